package model

import (
	"time"

	"gorm.io/datatypes"
)

type ChapterProgress struct {
	ChapterID string `json:"chapterId"`
	Completed bool   `json:"completed"`
}

type SectionProgress struct {
	SectionID string            `json:"sectionId"`
	Chapters  []ChapterProgress `json:"chapters"`
}

// UserCourseProgress 用户在某门课程上的学习进度。
// Sections 是报名时课程结构的快照，不随课程后续修改而变化。
// swagger:model
type UserCourseProgress struct {
	UserID                string                               `gorm:"primaryKey;type:varchar(64)" json:"userId"`
	CourseID              string                               `gorm:"primaryKey;type:varchar(36)" json:"courseId"`
	EnrollmentDate        time.Time                            `json:"enrollmentDate"`
	OverallProgress       float64                              `gorm:"not null;default:0" json:"overallProgress"`
	Sections              datatypes.JSONSlice[SectionProgress] `gorm:"type:json" json:"sections"`
	LastAccessedTimestamp time.Time                            `json:"lastAccessedTimestamp"`
}

func (UserCourseProgress) TableName() string {
	return "user_course_progress"
}

// NewProgressSnapshot 按课程当前结构生成初始进度，所有章节均未完成
func NewProgressSnapshot(userID string, course *Course, now time.Time) *UserCourseProgress {
	sections := make([]SectionProgress, 0, len(course.Sections))
	for _, s := range course.Sections {
		chapters := make([]ChapterProgress, 0, len(s.Chapters))
		for _, ch := range s.Chapters {
			chapters = append(chapters, ChapterProgress{ChapterID: ch.ChapterID})
		}
		sections = append(sections, SectionProgress{SectionID: s.SectionID, Chapters: chapters})
	}

	return &UserCourseProgress{
		UserID:                userID,
		CourseID:              course.CourseID,
		EnrollmentDate:        now,
		OverallProgress:       0,
		Sections:              sections,
		LastAccessedTimestamp: now,
	}
}

// MergeSections 合并章节完成状态；快照中不存在的章节/小节会被追加
func (p *UserCourseProgress) MergeSections(updates []SectionProgress) {
	for _, us := range updates {
		idx := -1
		for i := range p.Sections {
			if p.Sections[i].SectionID == us.SectionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			p.Sections = append(p.Sections, us)
			continue
		}

		section := &p.Sections[idx]
		for _, uc := range us.Chapters {
			found := false
			for j := range section.Chapters {
				if section.Chapters[j].ChapterID == uc.ChapterID {
					section.Chapters[j].Completed = uc.Completed
					found = true
					break
				}
			}
			if !found {
				section.Chapters = append(section.Chapters, uc)
			}
		}
	}
}

// CalculateOverallProgress 已完成章节占比（0-100）
func (p *UserCourseProgress) CalculateOverallProgress() float64 {
	total, completed := 0, 0
	for _, s := range p.Sections {
		for _, ch := range s.Chapters {
			total++
			if ch.Completed {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
