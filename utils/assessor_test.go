package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAnalyzeFramesSkipsWithoutAPIKey(t *testing.T) {
	t.Setenv("ASSESSOR_API_KEY", "")
	got := AnalyzeFrames([]string{"AAAA"}, time.Now().UTC())
	if !got.Passed || !got.AppearsLive {
		t.Fatalf("unconfigured assessor must pass: %+v", got)
	}
}

func TestAnalyzeFramesFailsWithoutFrames(t *testing.T) {
	t.Setenv("ASSESSOR_API_KEY", "test-key")
	got := AnalyzeFrames(nil, time.Now().UTC())
	if got.Passed || got.AppearsLive {
		t.Fatalf("no frames must fail: %+v", got)
	}
}

func TestAnalyzeFramesFailsClosedOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	t.Setenv("ASSESSOR_API_KEY", "test-key")
	t.Setenv("ASSESSOR_API_URL", srv.URL)

	got := AnalyzeFrames([]string{"AAAA"}, time.Now().UTC())
	if got.Passed {
		t.Fatalf("configured assessor error must fail the check: %+v", got)
	}
}

func TestAnalyzeFramesParsesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		// fenced JSON, the way the model often replies
		verdict := "```json\n{\"passed\":true,\"qualitySummary\":\"Clear video.\",\"appearsLive\":true,\"issues\":[]}\n```"
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": verdict}},
		})
	}))
	defer srv.Close()
	t.Setenv("ASSESSOR_API_KEY", "test-key")
	t.Setenv("ASSESSOR_API_URL", srv.URL)

	got := AnalyzeFrames([]string{"AAAA", "BBBB"}, time.Now().UTC())
	if !got.Passed || !got.AppearsLive {
		t.Fatalf("verdict not parsed: %+v", got)
	}
	if got.QualitySummary != "Clear video." {
		t.Fatalf("summary = %q", got.QualitySummary)
	}
}

func TestAnalyzeFramesUnparseableVerdictFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"sorry, I cannot help with that"}]}`))
	}))
	defer srv.Close()
	t.Setenv("ASSESSOR_API_KEY", "test-key")
	t.Setenv("ASSESSOR_API_URL", srv.URL)

	got := AnalyzeFrames([]string{"AAAA"}, time.Now().UTC())
	if got.Passed {
		t.Fatalf("unparseable verdict must fail: %+v", got)
	}
}
