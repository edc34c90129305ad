package models

import "time"

// Ledger entry kinds.
const (
	LedgerKindTaskReward    = "task_reward"
	LedgerKindWeeklyBonus   = "weekly_bonus"
	LedgerKindVoucherRedeem = "voucher_redeem"
)

// LedgerEntry is the journal behind every balance mutation. Reference carries
// a caller-supplied idempotency key (unique), so a retried credit for the
// same submission or bonus week inserts nothing and applies nothing twice.
type LedgerEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResidentID string    `gorm:"size:64;not null;index" json:"resident_id"`
	Stars      int       `gorm:"not null" json:"stars"` // positive credit, negative debit
	Reference  string    `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	Kind       string    `gorm:"type:varchar(20);not null" json:"kind"`
	Note       *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
