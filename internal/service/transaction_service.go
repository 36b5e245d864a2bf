package service

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

type TransactionStore interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindByID(ctx context.Context, transactionID string) (*model.Transaction, error)
	List(ctx context.Context, userID string) ([]model.Transaction, error)
	Delete(ctx context.Context, transactionID string) error
}

type ProgressStore interface {
	Create(ctx context.Context, progress *model.UserCourseProgress) error
	Find(ctx context.Context, userID, courseID string) (*model.UserCourseProgress, error)
	ListByUser(ctx context.Context, userID string) ([]model.UserCourseProgress, error)
	Save(ctx context.Context, progress *model.UserCourseProgress) error
	Delete(ctx context.Context, userID, courseID string) error
}

type CreateTransactionInput struct {
	TransactionID   string `json:"transactionId"`
	UserID          string `json:"userId"`
	CourseID        string `json:"courseId"`
	PaymentProvider string `json:"paymentProvider"`
	Amount          *int64 `json:"amount"`
}

// PurchaseResult 购买结果；Created 为 false 表示重复提交，返回的是已存在的记录
type PurchaseResult struct {
	Transaction *model.Transaction        `json:"newTransaction"`
	Progress    *model.UserCourseProgress `json:"courseProgress"`
	Created     bool                      `json:"-"`
}

type TransactionService struct {
	transactions TransactionStore
	progress     ProgressStore
	courses      CourseStore
	guard        PurchaseGuard
	now          func() time.Time
}

func NewTransactionService(transactions TransactionStore, progress ProgressStore, courses CourseStore, guard PurchaseGuard) *TransactionService {
	if guard == nil {
		guard = NoopPurchaseGuard{}
	}
	return &TransactionService{
		transactions: transactions,
		progress:     progress,
		courses:      courses,
		guard:        guard,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func validateTransactionInput(in *CreateTransactionInput) error {
	var missing []string
	if strings.TrimSpace(in.TransactionID) == "" {
		missing = append(missing, "transactionId")
	}
	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(in.CourseID) == "" {
		missing = append(missing, "courseId")
	}
	if strings.TrimSpace(in.PaymentProvider) == "" {
		missing = append(missing, "paymentProvider")
	}
	if in.Amount == nil {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return util.NewValidationError("Missing required fields", strings.Join(missing, ", "))
	}
	if *in.Amount < 0 {
		return util.NewValidationError("Invalid amount", "amount must not be negative")
	}
	return nil
}

// CreateTransaction 记录一次购买：写入交易、按课程当前结构生成进度、追加报名。
// 以 transactionId 幂等；后续步骤失败时尽力回滚已写入的记录。
func (s *TransactionService) CreateTransaction(ctx context.Context, in *CreateTransactionInput) (*PurchaseResult, error) {
	if err := validateTransactionInput(in); err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, in.TransactionID)
	if err != nil {
		return nil, err
	}
	defer release()

	course, err := s.courses.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	existing, err := s.transactions.FindByID(ctx, in.TransactionID)
	switch {
	case err == nil:
		if !samePurchase(existing, in) {
			return nil, util.NewValidationError("Transaction ID already used", "transactionId belongs to a different purchase")
		}
		return s.completePurchase(ctx, existing, course, false)
	case !errors.Is(err, util.ErrTransactionNotFound):
		return nil, err
	}

	txn := &model.Transaction{
		TransactionID:   in.TransactionID,
		UserID:          in.UserID,
		CourseID:        in.CourseID,
		PaymentProvider: in.PaymentProvider,
		Amount:          *in.Amount,
		DateTime:        s.now(),
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		// 并发的同一购买已先写入，由客户端重试走重放路径
		if errors.Is(err, util.ErrTransactionExists) {
			return nil, util.ErrPurchaseInProgress
		}
		return nil, err
	}

	return s.completePurchase(ctx, txn, course, true)
}

func samePurchase(txn *model.Transaction, in *CreateTransactionInput) bool {
	return txn.UserID == in.UserID &&
		txn.CourseID == in.CourseID &&
		txn.PaymentProvider == in.PaymentProvider &&
		txn.Amount == *in.Amount
}

// completePurchase 补齐进度与报名；重复提交时只补写缺失的部分
func (s *TransactionService) completePurchase(ctx context.Context, txn *model.Transaction, course *model.Course, fresh bool) (*PurchaseResult, error) {
	progressCreated := false
	progress, err := s.progress.Find(ctx, txn.UserID, txn.CourseID)
	if errors.Is(err, util.ErrProgressNotFound) {
		progress = model.NewProgressSnapshot(txn.UserID, course, s.now())
		err = s.progress.Create(ctx, progress)
		switch {
		case err == nil:
			progressCreated = true
		case errors.Is(err, util.ErrProgressExists):
			progress, err = s.progress.Find(ctx, txn.UserID, txn.CourseID)
		}
	}
	if err != nil {
		if fresh {
			s.compensate(ctx, txn, false)
		}
		return nil, err
	}

	if err := s.courses.AddEnrollment(ctx, txn.CourseID, txn.UserID); err != nil {
		if fresh {
			s.compensate(ctx, txn, progressCreated)
		}
		return nil, err
	}

	if fresh {
		monitoring.CoursePurchases.WithLabelValues(txn.PaymentProvider).Inc()
		logger.Log.Info("course purchased",
			zap.String("transactionId", txn.TransactionID),
			zap.String("userId", txn.UserID),
			zap.String("courseId", txn.CourseID),
			zap.Int64("amount", txn.Amount),
		)
	}

	return &PurchaseResult{Transaction: txn, Progress: progress, Created: fresh}, nil
}

// compensate 删除本次请求已写入的记录，失败只记录日志
func (s *TransactionService) compensate(ctx context.Context, txn *model.Transaction, removeProgress bool) {
	if removeProgress {
		if err := s.progress.Delete(ctx, txn.UserID, txn.CourseID); err != nil {
			logger.Log.Error("compensation failed: progress not removed",
				zap.String("transactionId", txn.TransactionID), zap.Error(err))
		}
	}
	if err := s.transactions.Delete(ctx, txn.TransactionID); err != nil {
		logger.Log.Error("compensation failed: transaction not removed",
			zap.String("transactionId", txn.TransactionID), zap.Error(err))
	}
}

// ListTransactions 只返回调用方自己的交易；userId 为空时默认为调用方
func (s *TransactionService) ListTransactions(ctx context.Context, userID, callerID string) ([]model.Transaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = callerID
	}
	if err := checkSelf(userID, callerID); err != nil {
		return nil, err
	}
	return s.transactions.List(ctx, userID)
}
