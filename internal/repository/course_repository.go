package repository

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// FindAll 按分类精确过滤，category 为空时返回全部课程
func (r *CourseRepository) FindAll(ctx context.Context, category string) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.WithContext(ctx).Preload("Enrollments").Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).Preload("Enrollments").First(&course, "course_id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	var courses []model.Course
	if len(courseIDs) == 0 {
		return courses, nil
	}
	err := r.DB.WithContext(ctx).Preload("Enrollments").Where("course_id IN ?", courseIDs).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

// Save 覆盖课程文档本身；报名记录只通过 AddEnrollment 追加
func (r *CourseRepository) Save(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(course).Error
}

func (r *CourseRepository) Delete(ctx context.Context, courseID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		res := tx.Where("course_id = ?", courseID).Delete(&model.Course{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrCourseNotFound
		}
		return nil
	})
}

// AddEnrollment 单行插入，重复报名被忽略
func (r *CourseRepository) AddEnrollment(ctx context.Context, courseID, userID string) error {
	enrollment := &model.Enrollment{CourseID: courseID, UserID: userID}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment).Error
}
