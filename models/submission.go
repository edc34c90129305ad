package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	StatusPending SubmissionStatus = "pending"
	StatusPass    SubmissionStatus = "pass"
	StatusFail    SubmissionStatus = "fail"
)

// Valid reports whether s is one of the known statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPass, StatusFail:
		return true
	}
	return false
}

// Terminal reports whether s is a final review decision.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusPass || s == StatusFail
}

// AIAssessment is the advisory quality/liveness verdict attached to a
// submission. It never decides the review outcome on its own.
type AIAssessment struct {
	Passed         bool                        `json:"passed"`
	QualitySummary string                      `gorm:"size:1024" json:"quality_summary"`
	AppearsLive    bool                        `json:"appears_live"`
	Issues         datatypes.JSONSlice[string] `json:"issues"`
}

type Submission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TaskID     uint       `gorm:"not null;index" json:"task_id"`
	ResidentID string     `gorm:"size:64;not null;index" json:"resident_id"`
	Timestamp  time.Time  `gorm:"not null" json:"timestamp"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`

	// Opaque payload: either the inline base64 blob or an object-storage key.
	VideoPayload string `gorm:"type:longtext" json:"-"`
	PayloadKey   string `gorm:"size:255" json:"payload_key,omitempty"`

	Status     SubmissionStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ReviewedAt *time.Time       `gorm:"index" json:"reviewed_at,omitempty"`

	Assessed bool         `gorm:"not null;default:false" json:"assessed"`
	AI       AIAssessment `gorm:"embedded;embeddedPrefix:ai_" json:"ai_assessment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
