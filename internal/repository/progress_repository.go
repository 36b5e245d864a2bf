package repository

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Create(ctx context.Context, progress *model.UserCourseProgress) error {
	err := r.DB.WithContext(ctx).Create(progress).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrProgressExists
	}
	return err
}

func (r *ProgressRepository) Find(ctx context.Context, userID, courseID string) (*model.UserCourseProgress, error) {
	var progress model.UserCourseProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProgressNotFound
		}
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.UserCourseProgress, error) {
	var list []model.UserCourseProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("enrollment_date DESC").Find(&list).Error
	return list, err
}

func (r *ProgressRepository) Save(ctx context.Context, progress *model.UserCourseProgress) error {
	return r.DB.WithContext(ctx).Save(progress).Error
}

func (r *ProgressRepository) Delete(ctx context.Context, userID, courseID string) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.UserCourseProgress{}).Error
}
