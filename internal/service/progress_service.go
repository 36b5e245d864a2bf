package service

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"time"
)

type UpdateProgressInput struct {
	Sections        []model.SectionProgress `json:"sections"`
	OverallProgress *float64                `json:"overallProgress"`
}

type ProgressService struct {
	progress ProgressStore
	courses  CourseStore
	now      func() time.Time
}

func NewProgressService(progress ProgressStore, courses CourseStore) *ProgressService {
	return &ProgressService{
		progress: progress,
		courses:  courses,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func checkSelf(userID, callerID string) error {
	if callerID == "" || userID != callerID {
		return util.ErrPermissionDenied
	}
	return nil
}

// ListEnrolledCourses 返回用户已报名的课程
func (s *ProgressService) ListEnrolledCourses(ctx context.Context, userID, callerID string) ([]model.Course, error) {
	if err := checkSelf(userID, callerID); err != nil {
		return nil, err
	}

	records, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.CourseID)
	}
	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

func (s *ProgressService) GetProgress(ctx context.Context, userID, courseID, callerID string) (*model.UserCourseProgress, error) {
	if err := checkSelf(userID, callerID); err != nil {
		return nil, err
	}
	return s.progress.Find(ctx, userID, courseID)
}

// UpdateProgress 合并章节完成状态并重新计算整体进度
func (s *ProgressService) UpdateProgress(ctx context.Context, userID, courseID, callerID string, in *UpdateProgressInput) (*model.UserCourseProgress, error) {
	if err := checkSelf(userID, callerID); err != nil {
		return nil, err
	}

	for _, sec := range in.Sections {
		if sec.SectionID == "" {
			return nil, util.NewValidationError("Invalid sections value", "sectionId is required")
		}
		for _, ch := range sec.Chapters {
			if ch.ChapterID == "" {
				return nil, util.NewValidationError("Invalid sections value", "chapterId is required")
			}
		}
	}

	progress, err := s.progress.Find(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	progress.MergeSections(in.Sections)
	if in.OverallProgress != nil {
		progress.OverallProgress = clampPercent(*in.OverallProgress)
	} else {
		progress.OverallProgress = progress.CalculateOverallProgress()
	}
	progress.LastAccessedTimestamp = s.now()

	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
