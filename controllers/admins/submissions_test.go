package admins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/ledger"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
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
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

// reviewRouter routes PATCH /v1/submissions/{id} so mux.Vars resolves.
func reviewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/submissions/{id}", ReviewHandler).Methods(http.MethodPatch)
	r.HandleFunc("/v1/submissions/{id}", GetSubmissionHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/submissions", ListSubmissionsHandler).Methods(http.MethodGet)
	return r
}

func review(t *testing.T, router *mux.Router, id uint, decision string) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"decision": decision})
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/v1/submissions/%d", id), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var resp utils.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func seedPending(t *testing.T, db *gorm.DB, stars int) models.Submission {
	t.Helper()
	now := time.Now().UTC()
	task := models.Task{Name: "kitchen", WindowStart: now.Add(-time.Hour), WindowEnd: now.Add(time.Hour), StarsAwarded: stars, Active: true}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	sub := models.Submission{TaskID: task.ID, ResidentID: "alice", Timestamp: now, Status: models.StatusPending}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return sub
}

func TestReviewPassCreditsOnce(t *testing.T) {
	db := openTestDB(t)
	sub := seedPending(t, db, 2)
	router := reviewRouter()

	rec, resp := review(t, router, sub.ID, "pass")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, resp.Message)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["stars_awarded"].(float64) != 2 {
		t.Fatalf("stars_awarded = %v, want 2", data["stars_awarded"])
	}

	var updated models.Submission
	if err := db.First(&updated, sub.ID).Error; err != nil {
		t.Fatalf("load submission: %v", err)
	}
	if updated.Status != models.StatusPass {
		t.Fatalf("status = %q, want pass", updated.Status)
	}
	if updated.ReviewedAt == nil {
		t.Fatal("reviewed_at not set")
	}

	reward, _ := ledger.NewStore(db).Get("alice")
	if reward.Stars != 2 || reward.TotalValidated != 1 {
		t.Fatalf("reward = %+v, want 2 stars / 1 validated", reward)
	}
}

func TestReviewFailDoesNotCredit(t *testing.T) {
	db := openTestDB(t)
	sub := seedPending(t, db, 2)
	router := reviewRouter()

	rec, _ := review(t, router, sub.ID, "fail")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var updated models.Submission
	db.First(&updated, sub.ID)
	if updated.Status != models.StatusFail {
		t.Fatalf("status = %q, want fail", updated.Status)
	}
	reward, _ := ledger.NewStore(db).Get("alice")
	if reward.Stars != 0 {
		t.Fatalf("stars = %d, want 0", reward.Stars)
	}
}

func TestReviewTwiceConflictsAndLedgerUnchanged(t *testing.T) {
	db := openTestDB(t)
	sub := seedPending(t, db, 2)
	router := reviewRouter()

	if rec, _ := review(t, router, sub.ID, "pass"); rec.Code != http.StatusOK {
		t.Fatalf("first review status = %d, want 200", rec.Code)
	}
	rec, resp := review(t, router, sub.ID, "fail")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second review status = %d, want 409", rec.Code)
	}
	if resp.Message != "Submission already validated" {
		t.Fatalf("message = %q", resp.Message)
	}

	var updated models.Submission
	db.First(&updated, sub.ID)
	if updated.Status != models.StatusPass {
		t.Fatalf("status = %q, first decision must stand", updated.Status)
	}
	reward, _ := ledger.NewStore(db).Get("alice")
	if reward.Stars != 2 || reward.TotalValidated != 1 {
		t.Fatalf("reward = %+v after re-review, want unchanged 2 / 1", reward)
	}
}

func TestReviewRetriedCreditIsNoOp(t *testing.T) {
	db := openTestDB(t)
	sub := seedPending(t, db, 3)
	router := reviewRouter()

	if rec, _ := review(t, router, sub.ID, "pass"); rec.Code != http.StatusOK {
		t.Fatalf("review failed")
	}

	// A crash between status write and credit would retry the credit path
	// with the same journal reference; it must not double-apply.
	store := ledger.NewStore(db)
	applied, err := store.CreditOnce("alice", 3, true, fmt.Sprintf("SUB-%d", sub.ID), models.LedgerKindTaskReward, "")
	if err != nil {
		t.Fatalf("retry credit: %v", err)
	}
	if applied {
		t.Fatal("retried credit must be a no-op")
	}
	reward, _ := store.Get("alice")
	if reward.Stars != 3 {
		t.Fatalf("stars = %d, want 3", reward.Stars)
	}
}

func TestReviewValidation(t *testing.T) {
	db := openTestDB(t)
	sub := seedPending(t, db, 1)
	router := reviewRouter()

	if rec, _ := review(t, router, sub.ID, "maybe"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad decision status = %d, want 400", rec.Code)
	}
	if rec, _ := review(t, router, 9999, "pass"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestListSubmissionsOmitsPayloadAndFilters(t *testing.T) {
	db := openTestDB(t)
	sub := seedPending(t, db, 1)
	if err := db.Model(&models.Submission{}).Where("id = ?", sub.ID).Update("video_payload", "SECRETPAYLOAD").Error; err != nil {
		t.Fatalf("set payload: %v", err)
	}
	router := reviewRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/submissions?status=pending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("SECRETPAYLOAD")) {
		t.Fatal("listing must not include the raw payload")
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/submissions?status=bogus", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus filter status = %d, want 400", rec.Code)
	}
}
