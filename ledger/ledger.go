package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AshOynk/immate/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInsufficientStars means a debit would push the balance negative.
	ErrInsufficientStars = errors.New("insufficient stars")
	// ErrAlreadyClaimed means the weekly bonus was already claimed for the week.
	ErrAlreadyClaimed = errors.New("bonus already claimed for this week")
	// ErrTargetNotReached means the weekly star target has not been met yet.
	ErrTargetNotReached = errors.New("weekly target not reached")
)

// Store wraps all reward-ledger mutations. Every mutation is a single
// conditional statement against persisted state (guarded UPDATE or
// unique-constraint INSERT), never a read followed by a separate write.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Get returns the ledger row for a resident. An unknown resident yields a
// zero-balance snapshot, never an error.
func (s *Store) Get(residentID string) (models.ResidentReward, error) {
	var row models.ResidentReward
	err := s.DB.Where("resident_id = ?", residentID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ResidentReward{ResidentID: residentID}, nil
	}
	if err != nil {
		return models.ResidentReward{}, err
	}
	return row, nil
}

// CreditOnce credits stars to a resident exactly once per reference. The
// journal insert on the unique reference is the idempotency gate: when the
// reference was already applied the call is a no-op and returns false. The
// balance upsert increments in place, creating the row on first credit.
func (s *Store) CreditOnce(residentID string, stars int, countValidated bool, reference, kind, note string) (bool, error) {
	if stars <= 0 {
		return false, fmt.Errorf("credit amount must be positive, got %d", stars)
	}
	applied := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		entry := models.LedgerEntry{
			ResidentID: residentID,
			Stars:      stars,
			Reference:  reference,
			Kind:       kind,
			Note:       &note,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if isDuplicateKey(err) {
				return nil // already applied by an earlier attempt
			}
			return err
		}
		inc := 0
		if countValidated {
			inc = 1
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "resident_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"stars":           gorm.Expr("stars + ?", stars),
				"total_validated": gorm.Expr("total_validated + ?", inc),
			}),
		}).Create(&models.ResidentReward{
			ResidentID:     residentID,
			Stars:          stars,
			TotalValidated: inc,
		}).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// Debit removes stars from a resident's balance. The guarded UPDATE only
// matches when the current balance covers the amount, so two racing debits
// against the same balance cannot both succeed. Returns the remaining
// balance on success and ErrInsufficientStars otherwise (a missing row
// counts as a zero balance).
func (s *Store) Debit(residentID string, stars int, reference, kind, note string) (int, error) {
	if stars <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", stars)
	}
	remaining := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ResidentReward{}).
			Where("resident_id = ? AND stars >= ?", residentID, stars).
			Update("stars", gorm.Expr("stars - ?", stars))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStars
		}
		entry := models.LedgerEntry{
			ResidentID: residentID,
			Stars:      -stars,
			Reference:  reference,
			Kind:       kind,
			Note:       &note,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		var row models.ResidentReward
		if err := tx.Where("resident_id = ?", residentID).First(&row).Error; err != nil {
			return err
		}
		remaining = row.Stars
		return nil
	})
	return remaining, err
}

// StarsThisWeek sums star values of this resident's passed submissions
// reviewed within [WeekStart(now), now).
func (s *Store) StarsThisWeek(residentID string, now time.Time) (int, error) {
	var total int
	err := s.DB.Model(&models.Submission{}).
		Select("COALESCE(SUM(tasks.stars_awarded), 0)").
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("submissions.resident_id = ? AND submissions.status = ?", residentID, models.StatusPass).
		Where("submissions.reviewed_at >= ? AND submissions.reviewed_at < ?", WeekStart(now), now).
		Scan(&total).Error
	return total, err
}

// WeekClaimed reports whether the weekly bonus for weekKey was claimed.
func (s *Store) WeekClaimed(residentID, weekKey string) (bool, error) {
	var n int64
	err := s.DB.Model(&models.RewardClaimedWeek{}).
		Where("resident_id = ? AND week_key = ?", residentID, weekKey).
		Count(&n).Error
	return n > 0, err
}

// ClaimBonus grants the weekly bonus: it recomputes the week's earned stars,
// inserts the claimed-week marker (its unique index is the once-per-week
// gate) and credits the bonus, all in one transaction. Concurrent claims in
// the same week collide on the marker and at most one commits a credit.
func (s *Store) ClaimBonus(residentID string, now time.Time, target int) (bonusStars, totalStars int, err error) {
	weekKey := WeekKey(now)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		sub := &Store{DB: tx}
		earned, err := sub.StarsThisWeek(residentID, now)
		if err != nil {
			return err
		}
		if earned < target {
			return ErrTargetNotReached
		}
		marker := models.RewardClaimedWeek{ResidentID: residentID, WeekKey: weekKey}
		if err := tx.Create(&marker).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyClaimed
			}
			return err
		}
		note := fmt.Sprintf("Weekly bonus for week of %s", weekKey)
		ref := fmt.Sprintf("BONUS-%s-%s", residentID, weekKey)
		applied, err := sub.CreditOnce(residentID, earned, false, ref, models.LedgerKindWeeklyBonus, note)
		if err != nil {
			return err
		}
		if !applied {
			// Journal row exists without a marker: a repair pass re-running
			// after partial failure. Treat as claimed.
			return ErrAlreadyClaimed
		}
		bonusStars = earned
		var row models.ResidentReward
		if err := tx.Where("resident_id = ?", residentID).First(&row).Error; err != nil {
			return err
		}
		totalStars = row.Stars
		return nil
	})
	return bonusStars, totalStars, err
}

// Residents lists every known resident id across submissions and rewards.
func (s *Store) Residents() ([]string, error) {
	var fromSubs, fromRewards []string
	if err := s.DB.Model(&models.Submission{}).Distinct("resident_id").Pluck("resident_id", &fromSubs).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.ResidentReward{}).Distinct("resident_id").Pluck("resident_id", &fromRewards).Error; err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(fromSubs)+len(fromRewards))
	for _, id := range append(fromSubs, fromRewards...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// isDuplicateKey matches unique-constraint violations across the MySQL and
// sqlite drivers, with a string fallback for drivers that do not translate.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}
