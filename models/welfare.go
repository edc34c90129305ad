package models

import (
	"time"

	"gorm.io/datatypes"
)

// Moods a resident can pick when starting a check-in.
var MoodValues = []string{"sad", "low", "neutral", "good", "happy"}

func ValidMood(m string) bool {
	for _, v := range MoodValues {
		if v == m {
			return true
		}
	}
	return false
}

const (
	CheckInInProgress = "in_progress"
	CheckInCompleted  = "completed"
)

type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// WelfareCheckIn is a simple turn-taking chat log with a mood tag.
type WelfareCheckIn struct {
	ID           uint                          `gorm:"primaryKey" json:"id"`
	ResidentID   string                        `gorm:"size:64;not null;index" json:"resident_id"`
	Name         string                        `gorm:"size:100" json:"name,omitempty"`
	Mood         string                        `gorm:"type:varchar(16);not null" json:"mood"`
	Conversation datatypes.JSONSlice[ChatTurn] `json:"conversation"`
	Summary      string                        `gorm:"type:text" json:"summary,omitempty"`
	Status       string                        `gorm:"type:varchar(16);not null;default:'in_progress'" json:"status"`
	CreatedAt    time.Time                     `json:"created_at"`
	UpdatedAt    time.Time                     `json:"updated_at"`
}

func (WelfareCheckIn) TableName() string {
	return "welfare_check_ins"
}
