package repository

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	DB *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	err := r.DB.WithContext(ctx).Create(txn).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrTransactionExists
	}
	return err
}

func (r *TransactionRepository) FindByID(ctx context.Context, transactionID string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.DB.WithContext(ctx).First(&txn, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// List userID 为空时返回全部交易
func (r *TransactionRepository) List(ctx context.Context, userID string) ([]model.Transaction, error) {
	var txns []model.Transaction
	query := r.DB.WithContext(ctx).Order("date_time DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Find(&txns).Error
	return txns, err
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID string) error {
	return r.DB.WithContext(ctx).Where("transaction_id = ?", transactionID).Delete(&model.Transaction{}).Error
}
