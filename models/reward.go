package models

import "time"

// ResidentReward is the per-resident ledger row: star balance, count of
// validated submissions and (via RewardClaimedWeek) the weekly-bonus history.
// Rows are created lazily on first credit and never deleted.
type ResidentReward struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	ResidentID     string    `gorm:"size:64;uniqueIndex;not null" json:"resident_id"`
	Stars          int       `gorm:"not null;default:0" json:"stars"`
	TotalValidated int       `gorm:"not null;default:0" json:"total_validated"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (ResidentReward) TableName() string {
	return "resident_rewards"
}

// RewardClaimedWeek marks a weekly bonus as claimed. The unique
// (resident_id, week_key) index makes the insert the atomic claim gate:
// a duplicate claim fails on the constraint, never double-credits.
type RewardClaimedWeek struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	ResidentID string    `gorm:"size:64;not null;uniqueIndex:idx_resident_week" json:"resident_id"`
	WeekKey    string    `gorm:"size:10;not null;uniqueIndex:idx_resident_week" json:"week_key"`
	CreatedAt  time.Time `json:"claimed_at"`
}

func (RewardClaimedWeek) TableName() string {
	return "reward_claimed_weeks"
}
