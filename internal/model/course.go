package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type CourseStatus string

const (
	StatusDraft     CourseStatus = "Draft"
	StatusPublished CourseStatus = "Published"
)

func (s CourseStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type ChapterType string

const (
	ChapterText  ChapterType = "Text"
	ChapterQuiz  ChapterType = "Quiz"
	ChapterVideo ChapterType = "Video"
)

// Chapter 章节内的最小学习单元，嵌入在 Section 中存储
// swagger:model
type Chapter struct {
	ChapterID string      `json:"chapterId"`
	Type      ChapterType `json:"type,omitempty"`
	Title     string      `json:"title"`
	Content   string      `json:"content,omitempty"`
	Video     string      `json:"video,omitempty"`
}

// swagger:model
type Section struct {
	SectionID          string    `json:"sectionId"`
	SectionTitle       string    `json:"sectionTitle"`
	SectionDescription string    `json:"sectionDescription,omitempty"`
	Chapters           []Chapter `json:"chapters"`
}

// Enrollment 课程的报名记录，(course_id, user_id) 唯一
type Enrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	CourseID  string    `gorm:"type:varchar(36);uniqueIndex:idx_course_user;not null" json:"-"`
	UserID    string    `gorm:"type:varchar(64);uniqueIndex:idx_course_user;not null" json:"userId"`
	CreatedAt time.Time `json:"-"`
}

func (Enrollment) TableName() string {
	return "course_enrollments"
}

// Course 课程，只允许其教师修改
// swagger:model
type Course struct {
	CourseID    string                       `gorm:"primaryKey;type:varchar(36)" json:"courseId"`
	TeacherID   string                       `gorm:"type:varchar(64);index;not null" json:"teacherId"`
	TeacherName string                       `gorm:"size:255;not null" json:"teacherName"`
	Title       string                       `gorm:"size:255" json:"title"`
	Description string                       `gorm:"type:text" json:"description"`
	Category    string                       `gorm:"size:100;index" json:"category"`
	Image       string                       `gorm:"size:1024" json:"image"`
	Price       int64                        `gorm:"not null;default:0" json:"price"`
	Level       CourseLevel                  `gorm:"size:32" json:"level"`
	Status      CourseStatus                 `gorm:"size:32;index" json:"status"`
	Sections    datatypes.JSONSlice[Section] `gorm:"type:json" json:"sections"`
	Enrollments []Enrollment                 `gorm:"foreignKey:CourseID;references:CourseID;constraint:OnDelete:CASCADE" json:"enrollments"`
	CreatedAt   time.Time                    `json:"createdAt"`
	UpdatedAt   time.Time                    `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.CourseID == "" {
		c.CourseID = GenerateUUID()
	}
	return nil
}

// FindSection 返回指定 sectionId 的章节
func (c *Course) FindSection(sectionID string) *Section {
	for i := range c.Sections {
		if c.Sections[i].SectionID == sectionID {
			return &c.Sections[i]
		}
	}
	return nil
}

func (s *Section) FindChapter(chapterID string) *Chapter {
	for i := range s.Chapters {
		if s.Chapters[i].ChapterID == chapterID {
			return &s.Chapters[i]
		}
	}
	return nil
}

// CoursePatch 课程更新时允许修改的字段；nil 表示未提供
type CoursePatch struct {
	Title       *string
	Description *string
	Category    *string
	Image       *string
	Level       *CourseLevel
	Status      *CourseStatus
	Price       *int64
	Sections    []Section
	HasSections bool
}

// Apply 将补丁浅合并到课程上
func (p *CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.HasSections {
		c.Sections = p.Sections
	}
}
