package models

import "time"

type Task struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	WindowStart  time.Time `gorm:"not null;index:idx_tasks_window" json:"window_start"`
	WindowEnd    time.Time `gorm:"not null;index:idx_tasks_window" json:"window_end"`
	StarsAwarded int       `gorm:"not null;default:1" json:"stars_awarded"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// InWindow reports whether now falls inside the submission window (both ends inclusive).
func (t *Task) InWindow(now time.Time) bool {
	return !now.Before(t.WindowStart) && !now.After(t.WindowEnd)
}

// Eligible reports whether the task currently accepts submissions.
func (t *Task) Eligible(now time.Time) bool {
	return t.Active && t.InWindow(now)
}
