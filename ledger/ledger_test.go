package ledger

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestCreditOnceIsIdempotentPerReference(t *testing.T) {
	store := NewStore(openTestDB(t))

	applied, err := store.CreditOnce("alice", 3, true, "SUB-1", models.LedgerKindTaskReward, "first credit")
	if err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if !applied {
		t.Fatal("first credit should apply")
	}

	applied, err = store.CreditOnce("alice", 3, true, "SUB-1", models.LedgerKindTaskReward, "retried credit")
	if err != nil {
		t.Fatalf("retried credit: %v", err)
	}
	if applied {
		t.Fatal("retried credit with the same reference must be a no-op")
	}

	reward, err := store.Get("alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reward.Stars != 3 {
		t.Fatalf("stars = %d, want 3", reward.Stars)
	}
	if reward.TotalValidated != 1 {
		t.Fatalf("total validated = %d, want 1", reward.TotalValidated)
	}
}

func TestCreditAccumulatesAcrossReferences(t *testing.T) {
	store := NewStore(openTestDB(t))

	for i, ref := range []string{"SUB-1", "SUB-2", "SUB-3"} {
		if _, err := store.CreditOnce("bob", i+1, true, ref, models.LedgerKindTaskReward, ""); err != nil {
			t.Fatalf("credit %s: %v", ref, err)
		}
	}
	reward, _ := store.Get("bob")
	if reward.Stars != 6 {
		t.Fatalf("stars = %d, want 6", reward.Stars)
	}
	if reward.TotalValidated != 3 {
		t.Fatalf("total validated = %d, want 3", reward.TotalValidated)
	}
}

func TestDebitExactBalanceReachesZero(t *testing.T) {
	store := NewStore(openTestDB(t))
	if _, err := store.CreditOnce("carol", 12, false, "SUB-1", models.LedgerKindTaskReward, ""); err != nil {
		t.Fatalf("credit: %v", err)
	}

	remaining, err := store.Debit("carol", 12, "VOUCH-1", models.LedgerKindVoucherRedeem, "")
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}

	if _, err := store.Debit("carol", 1, "VOUCH-2", models.LedgerKindVoucherRedeem, ""); !errors.Is(err, ErrInsufficientStars) {
		t.Fatalf("debit on empty balance: got %v, want ErrInsufficientStars", err)
	}
}

func TestDebitInsufficientLeavesBalanceUntouched(t *testing.T) {
	store := NewStore(openTestDB(t))
	if _, err := store.CreditOnce("dave", 4, false, "SUB-1", models.LedgerKindTaskReward, ""); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if _, err := store.Debit("dave", 5, "VOUCH-1", models.LedgerKindVoucherRedeem, ""); !errors.Is(err, ErrInsufficientStars) {
		t.Fatalf("debit: got %v, want ErrInsufficientStars", err)
	}
	reward, _ := store.Get("dave")
	if reward.Stars != 4 {
		t.Fatalf("stars = %d, want 4 (rejected debit must not change the balance)", reward.Stars)
	}
}

func TestDebitUnknownResident(t *testing.T) {
	store := NewStore(openTestDB(t))
	if _, err := store.Debit("nobody", 1, "VOUCH-1", models.LedgerKindVoucherRedeem, ""); !errors.Is(err, ErrInsufficientStars) {
		t.Fatalf("debit: got %v, want ErrInsufficientStars", err)
	}
}

func TestGetUnknownResidentIsZero(t *testing.T) {
	store := NewStore(openTestDB(t))
	reward, err := store.Get("ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reward.Stars != 0 || reward.TotalValidated != 0 {
		t.Fatalf("got %+v, want zero snapshot", reward)
	}
}

// seedWeek creates a task and n passed submissions for residentID, each worth
// starsEach, reviewed one hour before now, and credits the matching rewards.
func seedWeek(t *testing.T, store *Store, residentID string, n, starsEach int, now time.Time) {
	t.Helper()
	task := models.Task{
		Name:         "Clean kitchen",
		WindowStart:  now.AddDate(0, 0, -7),
		WindowEnd:    now.AddDate(0, 0, 7),
		StarsAwarded: starsEach,
		Active:       true,
	}
	if err := store.DB.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	reviewed := now.Add(-time.Hour)
	for i := 0; i < n; i++ {
		sub := models.Submission{
			TaskID:     task.ID,
			ResidentID: residentID,
			Timestamp:  reviewed.Add(-time.Hour),
			Status:     models.StatusPass,
			ReviewedAt: &reviewed,
		}
		if err := store.DB.Create(&sub).Error; err != nil {
			t.Fatalf("create submission: %v", err)
		}
		ref := fmt.Sprintf("SUB-%d", sub.ID)
		if _, err := store.CreditOnce(residentID, starsEach, true, ref, models.LedgerKindTaskReward, ""); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
}

func TestStarsThisWeek(t *testing.T) {
	store := NewStore(openTestDB(t))
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC) // Wednesday

	seedWeek(t, store, "erin", 2, 5, now)

	stars, err := store.StarsThisWeek("erin", now)
	if err != nil {
		t.Fatalf("stars this week: %v", err)
	}
	if stars != 10 {
		t.Fatalf("stars this week = %d, want 10", stars)
	}

	// A pass reviewed before Monday does not count.
	var task models.Task
	if err := store.DB.First(&task).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}
	lastWeek := now.AddDate(0, 0, -7)
	old := models.Submission{TaskID: task.ID, ResidentID: "erin", Timestamp: lastWeek, Status: models.StatusPass, ReviewedAt: &lastWeek}
	if err := store.DB.Create(&old).Error; err != nil {
		t.Fatalf("create old submission: %v", err)
	}
	stars, err = store.StarsThisWeek("erin", now)
	if err != nil {
		t.Fatalf("stars this week: %v", err)
	}
	if stars != 10 {
		t.Fatalf("stars this week = %d after old pass, want 10", stars)
	}
}

func TestClaimBonusDoublesWeekAndIsOncePerWeek(t *testing.T) {
	store := NewStore(openTestDB(t))
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

	seedWeek(t, store, "frank", 2, 5, now)

	bonus, total, err := store.ClaimBonus("frank", now, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if bonus != 10 {
		t.Fatalf("bonus = %d, want 10", bonus)
	}
	if total != 20 {
		t.Fatalf("total = %d, want 20", total)
	}

	if _, _, err := store.ClaimBonus("frank", now, 10); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second claim: got %v, want ErrAlreadyClaimed", err)
	}
	reward, _ := store.Get("frank")
	if reward.Stars != 20 {
		t.Fatalf("stars = %d after duplicate claim, want 20", reward.Stars)
	}

	claimed, err := store.WeekClaimed("frank", WeekKey(now))
	if err != nil {
		t.Fatalf("week claimed: %v", err)
	}
	if !claimed {
		t.Fatal("week should be marked claimed")
	}
}

func TestClaimBonusTargetNotReached(t *testing.T) {
	store := NewStore(openTestDB(t))
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

	seedWeek(t, store, "grace", 1, 5, now)

	if _, _, err := store.ClaimBonus("grace", now, 10); !errors.Is(err, ErrTargetNotReached) {
		t.Fatalf("claim below target: got %v, want ErrTargetNotReached", err)
	}
	if claimed, _ := store.WeekClaimed("grace", WeekKey(now)); claimed {
		t.Fatal("failed claim must not mark the week claimed")
	}
}

func TestResidents(t *testing.T) {
	store := NewStore(openTestDB(t))
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	seedWeek(t, store, "zed", 1, 1, now)
	if _, err := store.CreditOnce("amy", 1, false, "SUB-x", models.LedgerKindTaskReward, ""); err != nil {
		t.Fatalf("credit: %v", err)
	}

	ids, err := store.Residents()
	if err != nil {
		t.Fatalf("residents: %v", err)
	}
	if len(ids) != 2 || ids[0] != "amy" || ids[1] != "zed" {
		t.Fatalf("residents = %v, want [amy zed]", ids)
	}
}
