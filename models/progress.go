package models

import (
	"time"

	"gorm.io/datatypes"
)

// LessonProgress keeps per-resident lesson completion and badges as a
// persisted row keyed by resident id. Lesson ids are opaque strings.
type LessonProgress struct {
	ID               uint                        `gorm:"primaryKey" json:"-"`
	ResidentID       string                      `gorm:"size:64;uniqueIndex;not null" json:"resident_id"`
	CompletedLessons datatypes.JSONSlice[string] `json:"completed_lessons"`
	Badges           datatypes.JSONSlice[string] `json:"badges"`
	LastActivity     *time.Time                  `json:"last_activity,omitempty"`
	CreatedAt        time.Time                   `json:"-"`
	UpdatedAt        time.Time                   `json:"-"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
