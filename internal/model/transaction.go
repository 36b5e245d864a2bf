package model

import "time"

// Transaction 购买记录，创建后不可修改
// swagger:model
type Transaction struct {
	TransactionID   string    `gorm:"primaryKey;type:varchar(255)" json:"transactionId"`
	UserID          string    `gorm:"type:varchar(64);index;not null" json:"userId"`
	CourseID        string    `gorm:"type:varchar(36);index;not null" json:"courseId"`
	PaymentProvider string    `gorm:"size:32;not null" json:"paymentProvider"`
	Amount          int64     `gorm:"not null" json:"amount"`
	DateTime        time.Time `json:"dateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
