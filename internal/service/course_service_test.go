package service

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newCourseService(t *testing.T) (*CourseService, *stores, *memoryStorage) {
	t.Helper()
	st := newStores(t)
	storage := newMemoryStorage(true)
	return NewCourseService(st.courses, NewStorageServiceWithProvider(storage, 0)), st, storage
}

func TestCreateCourseDefaults(t *testing.T) {
	svc, _, _ := newCourseService(t)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)

	assert.NotEmpty(t, course.CourseID)
	assert.Equal(t, "Untitled Course", course.Title)
	assert.Equal(t, "No description provided", course.Description)
	assert.Equal(t, "Uncategorized", course.Category)
	assert.Equal(t, "", course.Image)
	assert.Equal(t, int64(0), course.Price)
	assert.Equal(t, model.LevelBeginner, course.Level)
	assert.Equal(t, model.StatusDraft, course.Status)
	assert.Empty(t, course.Sections)
	assert.Empty(t, course.Enrollments)
	assert.False(t, course.CreatedAt.IsZero())

	stored, err := svc.GetCourse(ctx, course.CourseID)
	require.NoError(t, err)
	want, err := json.Marshal(course)
	require.NoError(t, err)
	got, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestCreateCourseRequiresTeacher(t *testing.T) {
	svc, _, _ := newCourseService(t)

	_, err := svc.CreateCourse(context.Background(), "", "Alice")
	ve, ok := util.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Teacher ID and name are required", ve.Message)

	_, err = svc.CreateCourse(context.Background(), "t1", "  ")
	_, ok = util.IsValidationError(err)
	assert.True(t, ok)
}

func TestListCoursesAllMeansNoFilter(t *testing.T) {
	svc, _, _ := newCourseService(t)
	ctx := context.Background()

	for i, cat := range []string{"Programming", "Design"} {
		c, err := svc.CreateCourse(ctx, "t1", "Alice")
		require.NoError(t, err)
		_, err = svc.UpdateCourse(ctx, c.CourseID, "t1", &UpdateCourseInput{Category: strPtr(cat)})
		require.NoError(t, err, "course %d", i)
	}

	all, err := svc.ListCourses(ctx, "all")
	require.NoError(t, err)
	none, err := svc.ListCourses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, none, 2)

	design, err := svc.ListCourses(ctx, "Design")
	require.NoError(t, err)
	require.Len(t, design, 1)
	assert.Equal(t, "Design", design[0].Category)
}

func TestUpdateCourseByNonOwnerIsForbidden(t *testing.T) {
	svc, _, _ := newCourseService(t)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)

	_, err = svc.UpdateCourse(ctx, course.CourseID, "t2", &UpdateCourseInput{Title: strPtr("Hijacked")})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	err = svc.DeleteCourse(ctx, course.CourseID, "t2")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	stored, err := svc.GetCourse(ctx, course.CourseID)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Course", stored.Title)
}

func TestUpdateCourseMissing(t *testing.T) {
	svc, _, _ := newCourseService(t)

	_, err := svc.UpdateCourse(context.Background(), "nope", "t1", &UpdateCourseInput{})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestUpdateCoursePriceToMinorUnits(t *testing.T) {
	svc, _, _ := newCourseService(t)
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)

	cases := []struct {
		raw  string
		want int64
	}{
		{`"19.99"`, 1999},
		{`19.99`, 1999},
		{`"0.1"`, 10},
		{`"10"`, 1000},
		{`0`, 0},
	}
	for _, tc := range cases {
		updated, err := svc.UpdateCourse(ctx, course.CourseID, "t1", &UpdateCourseInput{Price: json.RawMessage(tc.raw)})
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, updated.Price, tc.raw)
	}
}

func TestUpdateCourseRejectsBadInputWithoutMutation(t *testing.T) {
	svc, _, _ := newCourseService(t)
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)

	bad := []*UpdateCourseInput{
		{Title: strPtr("New"), Price: json.RawMessage(`"abc"`)},
		{Title: strPtr("New"), Price: json.RawMessage(`""`)},
		{Title: strPtr("New"), Price: json.RawMessage(`"-5"`)},
		{Title: strPtr("New"), Level: strPtr("Expert")},
		{Title: strPtr("New"), Status: strPtr("Archived")},
		{Title: strPtr("New"), Sections: json.RawMessage(`{"not":"an array"}`)},
	}
	for i, in := range bad {
		_, err := svc.UpdateCourse(ctx, course.CourseID, "t1", in)
		_, ok := util.IsValidationError(err)
		assert.True(t, ok, "case %d: %v", i, err)
	}

	stored, err := svc.GetCourse(ctx, course.CourseID)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Course", stored.Title)
	assert.Equal(t, int64(0), stored.Price)
}

func TestUpdateCourseSectionsAssignsAndPreservesIDs(t *testing.T) {
	svc, _, _ := newCourseService(t)
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)

	sections := `[
		{"sectionId":"keep-s","sectionTitle":"Kept","chapters":[{"chapterId":"keep-c","title":"Kept chapter","type":"Video"}]},
		{"sectionTitle":"Fresh","chapters":[{"title":"Fresh chapter"}]}
	]`
	encoded, err := json.Marshal(sections)
	require.NoError(t, err)

	updated, err := svc.UpdateCourse(ctx, course.CourseID, "t1", &UpdateCourseInput{Sections: encoded})
	require.NoError(t, err)
	require.Len(t, updated.Sections, 2)

	assert.Equal(t, "keep-s", updated.Sections[0].SectionID)
	assert.Equal(t, "keep-c", updated.Sections[0].Chapters[0].ChapterID)
	assert.Equal(t, model.ChapterVideo, updated.Sections[0].Chapters[0].Type)

	fresh := updated.Sections[1]
	assert.NotEmpty(t, fresh.SectionID)
	assert.NotEqual(t, "keep-s", fresh.SectionID)
	require.Len(t, fresh.Chapters, 1)
	assert.NotEmpty(t, fresh.Chapters[0].ChapterID)
	assert.Equal(t, model.ChapterText, fresh.Chapters[0].Type)

	// 再次提交同一结构，ID 不变
	again, err := json.Marshal(updated.Sections)
	require.NoError(t, err)
	second, err := svc.UpdateCourse(ctx, course.CourseID, "t1", &UpdateCourseInput{Sections: again})
	require.NoError(t, err)
	assert.Equal(t, fresh.SectionID, second.Sections[1].SectionID)
	assert.Equal(t, fresh.Chapters[0].ChapterID, second.Sections[1].Chapters[0].ChapterID)
}

func TestParseSectionsRejectsDuplicateIDs(t *testing.T) {
	_, err := ParseSections(json.RawMessage(`[{"sectionId":"a","chapters":[]},{"sectionId":"a","chapters":[]}]`))
	_, ok := util.IsValidationError(err)
	assert.True(t, ok)

	_, err = ParseSections(json.RawMessage(`[{"sectionId":"a","chapters":[{"chapterId":"x"},{"chapterId":"x"}]}]`))
	_, ok = util.IsValidationError(err)
	assert.True(t, ok)
}

func TestDeleteCourse(t *testing.T) {
	svc, st, _ := newCourseService(t)
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)
	require.NoError(t, st.courses.AddEnrollment(ctx, course.CourseID, "u1"))

	require.NoError(t, svc.DeleteCourse(ctx, course.CourseID, "t1"))

	_, err = svc.GetCourse(ctx, course.CourseID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	assert.ErrorIs(t, svc.DeleteCourse(ctx, course.CourseID, "t1"), util.ErrCourseNotFound)
}

func TestUploadCourseImage(t *testing.T) {
	svc, _, storage := newCourseService(t)
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)

	updated, err := svc.UploadCourseImage(ctx, course.CourseID, "t1", "Cover.PNG", "image/png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.Image, "https://cdn.test/courses/"+course.CourseID+"/"))
	assert.True(t, strings.HasSuffix(updated.Image, ".png"))
	assert.Len(t, storage.objects, 1)

	_, err = svc.UploadCourseImage(ctx, course.CourseID, "t1", "notes.txt", "text/plain", 4, strings.NewReader("data"))
	_, ok := util.IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.UploadCourseImage(ctx, course.CourseID, "t1", "big.png", "image/png", util.MaxImageSize+1, strings.NewReader(""))
	_, ok = util.IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.UploadCourseImage(ctx, course.CourseID, "t2", "Cover.png", "image/png", 4, strings.NewReader("data"))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestGetChapterUploadURL(t *testing.T) {
	svc, _, storage := newCourseService(t)
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, "t1", "Alice")
	require.NoError(t, err)
	_, err = svc.UpdateCourse(ctx, course.CourseID, "t1", &UpdateCourseInput{
		Sections: json.RawMessage(`[{"sectionId":"s1","chapters":[{"chapterId":"c1","title":"Intro","type":"Video"}]}]`),
	})
	require.NoError(t, err)

	result, err := svc.GetChapterUploadURL(ctx, course.CourseID, "s1", "c1", "t1", "lesson.mp4", "video/mp4")
	require.NoError(t, err)
	require.Len(t, storage.presigns, 1)
	key := storage.presigns[0]
	assert.True(t, strings.HasPrefix(key, "videos/"))
	assert.True(t, strings.HasSuffix(key, "/lesson.mp4"))
	assert.Equal(t, "https://cdn.test/"+key, result.VideoURL)
	assert.Contains(t, result.UploadURL, key)

	_, err = svc.GetChapterUploadURL(ctx, course.CourseID, "s1", "missing", "t1", "lesson.mp4", "video/mp4")
	assert.ErrorIs(t, err, util.ErrChapterNotFound)

	_, err = svc.GetChapterUploadURL(ctx, course.CourseID, "s1", "c1", "t1", "", "video/mp4")
	_, ok := util.IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.GetChapterUploadURL(ctx, course.CourseID, "s1", "c1", "t1", "doc.pdf", "application/pdf")
	_, ok = util.IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.GetChapterUploadURL(ctx, course.CourseID, "s1", "c1", "t2", "lesson.mp4", "video/mp4")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
