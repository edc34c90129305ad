package residents

import (
	"net/http"
	"testing"
	"time"

	"github.com/AshOynk/immate/models"
)

func TestValidateRecency(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		age    time.Duration
		wantOK bool
	}{
		{"just recorded", 0, true},
		{"exactly thirty minutes old", 30 * time.Minute, true},
		{"one second past thirty minutes", 30*time.Minute + time.Second, false},
		{"one minute in the future", -time.Minute, true},
		{"one second past a minute in the future", -(time.Minute + time.Second), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			claimed := now.Add(-c.age)
			err := validateRecency(now, claimed, nil)
			if c.wantOK && err != nil {
				t.Fatalf("age %v rejected: %v", c.age, err)
			}
			if !c.wantOK && err == nil {
				t.Fatalf("age %v accepted, want rejection", c.age)
			}
		})
	}
}

func TestValidateRecencyPrefersRecordedAt(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	staleClaim := now.Add(-2 * time.Hour)
	fresh := now.Add(-time.Minute)
	if err := validateRecency(now, staleClaim, &fresh); err != nil {
		t.Fatalf("fresh recorded_at should win over stale claim: %v", err)
	}
	stale := now.Add(-2 * time.Hour)
	if err := validateRecency(now, now, &stale); err == nil {
		t.Fatal("stale recorded_at should be rejected even with a fresh claim")
	}
}

func submitBody(taskID uint, ts time.Time) map[string]interface{} {
	return map[string]interface{}{
		"task_id":      taskID,
		"resident_id":  "alice",
		"timestamp":    ts.Format(time.RFC3339),
		"video_base64": "AAAA",
	}
}

func TestSubmitUnknownTask(t *testing.T) {
	openTestDB(t)
	rec, resp := doJSON(t, SubmitHandler, http.MethodPost, "/v1/submissions", submitBody(999, time.Now().UTC()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Success {
		t.Fatal("expected failure response")
	}
}

func TestSubmitInactiveAndWindowChecks(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	inactive := models.Task{Name: "old", WindowStart: now.Add(-time.Hour), WindowEnd: now.Add(time.Hour), StarsAwarded: 1, Active: false}
	notStarted := models.Task{Name: "soon", WindowStart: now.Add(time.Hour), WindowEnd: now.Add(2 * time.Hour), StarsAwarded: 1, Active: true}
	ended := models.Task{Name: "done", WindowStart: now.Add(-2 * time.Hour), WindowEnd: now.Add(-time.Hour), StarsAwarded: 1, Active: true}
	for _, task := range []*models.Task{&inactive, &notStarted, &ended} {
		if err := db.Create(task).Error; err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	cases := []struct {
		name    string
		taskID  uint
		message string
	}{
		{"inactive task", inactive.ID, "Task is not active"},
		{"window not started", notStarted.ID, "Task window has not started yet"},
		{"window ended", ended.ID, "Task window has ended"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec, resp := doJSON(t, SubmitHandler, http.MethodPost, "/v1/submissions", submitBody(c.taskID, now))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.Message != c.message {
				t.Fatalf("message = %q, want %q", resp.Message, c.message)
			}
		})
	}
}

func TestSubmitStaleRecordingRejected(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	task := models.Task{Name: "kitchen", WindowStart: now.Add(-time.Hour), WindowEnd: now.Add(time.Hour), StarsAwarded: 1, Active: true}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	rec, _ := doJSON(t, SubmitHandler, http.MethodPost, "/v1/submissions", submitBody(task.ID, now.Add(-31*time.Minute)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var count int64
	db.Model(&models.Submission{}).Count(&count)
	if count != 0 {
		t.Fatalf("submissions = %d, want 0 (rejected submission must not persist)", count)
	}
}

func TestSubmitHappyPathIsPendingWithNoCredit(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	task := models.Task{Name: "kitchen", WindowStart: now.Add(-time.Hour), WindowEnd: now.Add(time.Hour), StarsAwarded: 2, Active: true}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	rec, resp := doJSON(t, SubmitHandler, http.MethodPost, "/v1/submissions", submitBody(task.ID, now))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, resp.Message)
	}
	data := dataMap(t, resp)
	if data["status"] != "pending" {
		t.Fatalf("status = %v, want pending", data["status"])
	}

	var sub models.Submission
	if err := db.First(&sub).Error; err != nil {
		t.Fatalf("load submission: %v", err)
	}
	if sub.Status != models.StatusPending {
		t.Fatalf("persisted status = %q, want pending", sub.Status)
	}
	if sub.VideoPayload != "AAAA" {
		t.Fatalf("payload not stored inline")
	}

	// Submitting never moves stars.
	var rewards int64
	db.Model(&models.ResidentReward{}).Count(&rewards)
	if rewards != 0 {
		t.Fatalf("reward rows = %d, want 0", rewards)
	}
}
