package service

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrolledUser(t *testing.T) (*ProgressService, *model.Course) {
	t.Helper()
	st := newStores(t)
	course := seedCourse(t, st)
	txns := NewTransactionService(st.transactions, st.progress, st.courses, nil)
	_, err := txns.CreateTransaction(context.Background(), purchaseInput(course.CourseID))
	require.NoError(t, err)
	return NewProgressService(st.progress, st.courses), course
}

func TestListEnrolledCourses(t *testing.T) {
	svc, course := enrolledUser(t)
	ctx := context.Background()

	courses, err := svc.ListEnrolledCourses(ctx, "u1", "u1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, course.CourseID, courses[0].CourseID)

	_, err = svc.ListEnrolledCourses(ctx, "u1", "u2")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestUpdateProgressRecalculates(t *testing.T) {
	svc, course := enrolledUser(t)
	ctx := context.Background()

	updated, err := svc.UpdateProgress(ctx, "u1", course.CourseID, "u1", &UpdateProgressInput{
		Sections: []model.SectionProgress{{
			SectionID: "s1",
			Chapters:  []model.ChapterProgress{{ChapterID: "c1", Completed: true}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(50), updated.OverallProgress)
	assert.True(t, updated.Sections[0].Chapters[0].Completed)
	assert.False(t, updated.Sections[1].Chapters[0].Completed)
	assert.False(t, updated.LastAccessedTimestamp.Before(updated.EnrollmentDate))

	stored, err := svc.GetProgress(ctx, "u1", course.CourseID, "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(50), stored.OverallProgress)
}

func TestUpdateProgressOverrideIsClamped(t *testing.T) {
	svc, course := enrolledUser(t)
	over := 150.0

	updated, err := svc.UpdateProgress(context.Background(), "u1", course.CourseID, "u1", &UpdateProgressInput{OverallProgress: &over})
	require.NoError(t, err)
	assert.Equal(t, float64(100), updated.OverallProgress)
}

func TestUpdateProgressAppendsUnknownChapters(t *testing.T) {
	svc, course := enrolledUser(t)

	updated, err := svc.UpdateProgress(context.Background(), "u1", course.CourseID, "u1", &UpdateProgressInput{
		Sections: []model.SectionProgress{
			{SectionID: "s2", Chapters: []model.ChapterProgress{{ChapterID: "c-new", Completed: true}}},
			{SectionID: "s-new", Chapters: []model.ChapterProgress{{ChapterID: "c-x"}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Sections, 3)
	assert.Len(t, updated.Sections[1].Chapters, 2)
	assert.Equal(t, float64(25), updated.OverallProgress)
}

func TestUpdateProgressErrors(t *testing.T) {
	svc, course := enrolledUser(t)
	ctx := context.Background()

	_, err := svc.UpdateProgress(ctx, "u1", course.CourseID, "u2", &UpdateProgressInput{})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.UpdateProgress(ctx, "u1", "missing", "u1", &UpdateProgressInput{})
	assert.ErrorIs(t, err, util.ErrProgressNotFound)

	_, err = svc.UpdateProgress(ctx, "u1", course.CourseID, "u1", &UpdateProgressInput{
		Sections: []model.SectionProgress{{Chapters: []model.ChapterProgress{{ChapterID: "c1"}}}},
	})
	_, ok := util.IsValidationError(err)
	assert.True(t, ok)
}
