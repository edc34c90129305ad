package models

import "time"

const (
	RoleResident = "resident"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"type:varchar(16);not null;default:'resident'" json:"role"`
	ResidentID   string    `gorm:"size:64;index" json:"resident_id,omitempty"`
	Name         string    `gorm:"size:100" json:"name,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
