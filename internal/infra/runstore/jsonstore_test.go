package runstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
)

func sampleReport(start time.Time) domain.RunReport {
	return domain.RunReport{
		Target:     "local",
		BaseURL:    "http://127.0.0.1:8000",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Steps: []domain.StepResult{
			{
				Name:       "login",
				Method:     domain.MethodPost,
				URL:        "http://127.0.0.1:8000/auth/login",
				StatusCode: 200,
				LatencyMS:  42,
				Parse:      domain.ParseJSON,
				Assertions: []domain.AssertionResult{
					{Name: "status_2xx", Passed: true, Message: "status 200"},
				},
				Extracts: []domain.ExtractResult{
					{Name: "token", Success: true, Message: `extracted "token"`},
				},
				Extracted: domain.Vars{"token": "tok-secret"},
				Response: domain.ResponseSnapshot{
					Headers: map[string][]string{
						"Content-Type": {"application/json"},
						"Set-Cookie":   {"session=abc"},
						"X-Request-Id": {"r1"},
					},
					Body: []byte(`{"access_token":"tok-secret"}`),
				},
			},
		},
		Stability: &domain.StabilityResult{FirstID: "7", SecondID: "7", Stable: true},
	}
}

func TestSaveReport_CreatesJSONFile(t *testing.T) {
	tmp := t.TempDir()

	cfg := domain.DefaultConfig()
	cfg.Masking.Enabled = false

	store := NewJSONStore(tmp, cfg)

	start := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	id, err := store.SaveReport(sampleReport(start))
	if err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}

	want := "20260203T101112Z_local"
	if id != want {
		t.Fatalf("expected id=%s, got=%s", want, id)
	}

	path := filepath.Join(tmp, "reports", id+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	var loaded domain.RunReport
	if err := json.Unmarshal(b, &loaded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if loaded.Target != "local" || len(loaded.Steps) != 1 {
		t.Fatalf("unexpected artifact: %+v", loaded)
	}
	if loaded.Stability == nil || !loaded.Stability.Stable {
		t.Fatalf("expected stability preserved")
	}
}

func TestSaveReport_MasksSensitiveValues(t *testing.T) {
	tmp := t.TempDir()

	cfg := domain.DefaultConfig() // masking on by default
	store := NewJSONStore(tmp, cfg)

	start := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	report := sampleReport(start)

	id, err := store.SaveReport(report)
	if err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(tmp, "reports", id+".json"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	var loaded domain.RunReport
	if err := json.Unmarshal(b, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if loaded.Steps[0].Extracted["token"] != maskValue {
		t.Fatalf("expected token masked, got=%q", loaded.Steps[0].Extracted["token"])
	}
	if loaded.Steps[0].Response.Headers["Set-Cookie"][0] != maskValue {
		t.Fatalf("expected Set-Cookie masked")
	}
	if loaded.Steps[0].Response.Headers["X-Request-Id"][0] != "r1" {
		t.Fatalf("expected non-sensitive header untouched")
	}

	// Masking must not mutate the caller's report.
	if report.Steps[0].Extracted["token"] != "tok-secret" {
		t.Fatalf("input report mutated")
	}
}

func TestSaveReport_AppendsIndex(t *testing.T) {
	tmp := t.TempDir()

	cfg := domain.DefaultConfig()
	store := NewJSONStore(tmp, cfg, WithIndex(true))

	start := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	if _, err := store.SaveReport(sampleReport(start)); err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}
	if _, err := store.SaveReport(sampleReport(start.Add(time.Minute))); err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(tmp, "reports", "index.jsonl"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 index lines, got %d", len(lines))
	}

	var entry struct {
		ID     string `json:"id"`
		Target string `json:"target"`
		Stable *bool  `json:"same_day_stable"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("index line is not JSON: %v", err)
	}
	if entry.Target != "local" || entry.Stable == nil || !*entry.Stable {
		t.Fatalf("unexpected index entry: %+v", entry)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"local", "local"},
		{"Staging EU", "staging-eu"},
		{"  ", ""},
		{"prod/eu-1", "prod-eu-1"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Errorf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
