package database

import (
	"log"
	"time"

	"github.com/AshOynk/immate/models"

	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Submission{},
		&models.ResidentReward{},
		&models.RewardClaimedWeek{},
		&models.LedgerEntry{},
		&models.WelfareCheckIn{},
		&models.LessonProgress{},
	)
}

// SeedDefaultTasks inserts a starter task set when the table is empty.
func SeedDefaultTasks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := time.Now().UTC()
	windowEnd := now.AddDate(0, 0, 7)
	defaults := []models.Task{
		{Name: "Send proof that kitchen is clean", Description: "Record a short video showing the kitchen is clean", WindowStart: now, WindowEnd: windowEnd, StarsAwarded: 1, Active: true},
		{Name: "Send proof that bathroom is tidy", Description: "Record a short video showing the bathroom is tidy", WindowStart: now, WindowEnd: windowEnd, StarsAwarded: 1, Active: true},
		{Name: "Send proof that your room is tidy", Description: "Record a short video showing your room is tidy", WindowStart: now, WindowEnd: windowEnd, StarsAwarded: 1, Active: true},
	}
	if err := db.Create(&defaults).Error; err != nil {
		return err
	}
	log.Printf("[database] seeded %d default tasks", len(defaults))
	return nil
}
