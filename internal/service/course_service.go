package service

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CourseStore 课程文档存储
type CourseStore interface {
	FindAll(ctx context.Context, category string) ([]model.Course, error)
	FindByID(ctx context.Context, courseID string) (*model.Course, error)
	FindByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	Save(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, courseID string) error
	AddEnrollment(ctx context.Context, courseID, userID string) error
}

const (
	defaultCourseTitle       = "Untitled Course"
	defaultCourseDescription = "No description provided"
	defaultCourseCategory    = "Uncategorized"
)

// UpdateCourseInput 课程更新请求；price 与 sections 保留原始 JSON，待权限校验通过后再解析
type UpdateCourseInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Image       *string         `json:"image"`
	Level       *string         `json:"level"`
	Status      *string         `json:"status"`
	Price       json.RawMessage `json:"price" swaggertype:"string"`
	Sections    json.RawMessage `json:"sections" swaggertype:"array,object"`
}

type ChapterUploadURL struct {
	UploadURL string `json:"uploadUrl"`
	VideoURL  string `json:"videoUrl"`
}

type CourseService struct {
	courses CourseStore
	storage *StorageService
	now     func() time.Time
}

func NewCourseService(courses CourseStore, storage *StorageService) *CourseService {
	return &CourseService{
		courses: courses,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *CourseService) ListCourses(ctx context.Context, category string) ([]model.Course, error) {
	if category == util.CategoryAll {
		category = ""
	}
	return s.courses.FindAll(ctx, category)
}

func (s *CourseService) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	return s.courses.FindByID(ctx, courseID)
}

func (s *CourseService) CreateCourse(ctx context.Context, teacherID, teacherName string) (*model.Course, error) {
	teacherID = strings.TrimSpace(teacherID)
	teacherName = strings.TrimSpace(teacherName)
	if teacherID == "" || teacherName == "" {
		return nil, util.NewValidationError("Teacher ID and name are required", "")
	}

	now := s.now()
	course := &model.Course{
		CourseID:    model.GenerateUUID(),
		TeacherID:   teacherID,
		TeacherName: teacherName,
		Title:       defaultCourseTitle,
		Description: defaultCourseDescription,
		Category:    defaultCourseCategory,
		Image:       "",
		Price:       0,
		Level:       model.LevelBeginner,
		Status:      model.StatusDraft,
		Sections:    []model.Section{},
		Enrollments: []model.Enrollment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// loadOwned 读取课程并校验调用方是否为课程教师
func (s *CourseService) loadOwned(ctx context.Context, courseID, callerID string) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if callerID == "" || course.TeacherID != callerID {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, courseID, callerID string, input *UpdateCourseInput) (*model.Course, error) {
	course, err := s.loadOwned(ctx, courseID, callerID)
	if err != nil {
		return nil, err
	}

	patch, err := BuildCoursePatch(input)
	if err != nil {
		return nil, err
	}

	patch.Apply(course)
	course.UpdatedAt = s.now()

	if err := s.courses.Save(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, courseID, callerID string) error {
	if _, err := s.loadOwned(ctx, courseID, callerID); err != nil {
		return err
	}
	return s.courses.Delete(ctx, courseID)
}

// UploadCourseImage 上传课程封面并写回 image 字段
func (s *CourseService) UploadCourseImage(ctx context.Context, courseID, callerID, fileName, contentType string, size int64, reader io.Reader) (*model.Course, error) {
	course, err := s.loadOwned(ctx, courseID, callerID)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(contentType, util.MimeImage) {
		return nil, util.NewValidationError("Invalid image file", "only image uploads are accepted")
	}
	if size > util.MaxImageSize {
		return nil, util.NewValidationError("Invalid image file", fmt.Sprintf("image exceeds %d bytes", util.MaxImageSize))
	}

	key := path.Join("courses", courseID, model.GenerateUUID()+strings.ToLower(filepath.Ext(fileName)))
	url, err := s.storage.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	course.Image = url
	course.UpdatedAt = s.now()
	if err := s.courses.Save(ctx, course); err != nil {
		// 课程未更新时清理已上传的文件
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("failed to remove orphaned course image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return course, nil
}

// GetChapterUploadURL 为章节视频生成直传地址
func (s *CourseService) GetChapterUploadURL(ctx context.Context, courseID, sectionID, chapterID, callerID, fileName, fileType string) (*ChapterUploadURL, error) {
	if strings.TrimSpace(fileName) == "" || strings.TrimSpace(fileType) == "" {
		return nil, util.NewValidationError("File name and type are required", "")
	}
	if !strings.HasPrefix(fileType, util.MimeVideo) {
		return nil, util.NewValidationError("Invalid file type", "chapter uploads must be videos")
	}

	course, err := s.loadOwned(ctx, courseID, callerID)
	if err != nil {
		return nil, err
	}

	section := course.FindSection(sectionID)
	if section == nil || section.FindChapter(chapterID) == nil {
		return nil, util.ErrChapterNotFound
	}

	key := path.Join("videos", model.GenerateUUID(), path.Base(filepath.ToSlash(fileName)))
	uploadURL, err := s.storage.PresignUpload(ctx, key, fileType)
	if err != nil {
		return nil, err
	}

	return &ChapterUploadURL{UploadURL: uploadURL, VideoURL: s.storage.GetURL(key)}, nil
}

// BuildCoursePatch 逐字段校验更新请求，任何字段不合法都不会产生修改
func BuildCoursePatch(input *UpdateCourseInput) (*model.CoursePatch, error) {
	patch := &model.CoursePatch{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Image:       input.Image,
	}

	if input.Level != nil {
		level := model.CourseLevel(*input.Level)
		if !level.Valid() {
			return nil, util.NewValidationError("Invalid level value", "level must be Beginner, Intermediate or Advanced")
		}
		patch.Level = &level
	}

	if input.Status != nil {
		status := model.CourseStatus(*input.Status)
		if !status.Valid() {
			return nil, util.NewValidationError("Invalid status value", "status must be Draft or Published")
		}
		patch.Status = &status
	}

	if isPresent(input.Price) {
		price, err := util.ParsePrice(input.Price)
		if err != nil {
			return nil, err
		}
		patch.Price = &price
	}

	if isPresent(input.Sections) {
		sections, err := ParseSections(input.Sections)
		if err != nil {
			return nil, err
		}
		patch.Sections = sections
		patch.HasSections = true
	}

	return patch, nil
}

func isPresent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

// ParseSections 接受 JSON 数组或内容为 JSON 数组的字符串，
// 为缺少 ID 的小节和章节生成新 ID，已有 ID 保持不变
func ParseSections(raw json.RawMessage) ([]model.Section, error) {
	data := []byte(raw)
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, util.NewValidationError("Invalid sections value", err.Error())
		}
		data = []byte(encoded)
	}

	var sections []model.Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, util.NewValidationError("Invalid sections value", err.Error())
	}
	if sections == nil {
		sections = []model.Section{}
	}

	sectionIDs := make(map[string]struct{}, len(sections))
	for i := range sections {
		section := &sections[i]
		if section.SectionID == "" {
			section.SectionID = model.GenerateUUID()
		}
		if _, dup := sectionIDs[section.SectionID]; dup {
			return nil, util.NewValidationError("Invalid sections value", "duplicate sectionId "+section.SectionID)
		}
		sectionIDs[section.SectionID] = struct{}{}

		if section.Chapters == nil {
			section.Chapters = []model.Chapter{}
		}
		chapterIDs := make(map[string]struct{}, len(section.Chapters))
		for j := range section.Chapters {
			chapter := &section.Chapters[j]
			if chapter.ChapterID == "" {
				chapter.ChapterID = model.GenerateUUID()
			}
			if _, dup := chapterIDs[chapter.ChapterID]; dup {
				return nil, util.NewValidationError("Invalid sections value", "duplicate chapterId "+chapter.ChapterID)
			}
			chapterIDs[chapter.ChapterID] = struct{}{}

			if chapter.Type == "" {
				chapter.Type = model.ChapterText
			}
			switch chapter.Type {
			case model.ChapterText, model.ChapterQuiz, model.ChapterVideo:
			default:
				return nil, util.NewValidationError("Invalid sections value", "unknown chapter type "+string(chapter.Type))
			}
		}
	}

	return sections, nil
}
