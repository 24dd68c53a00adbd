package webhookstub

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chatPayload() *bytes.Reader {
	b, _ := json.Marshal(map[string]any{
		"message":     "I feel stressed",
		"history":     []any{},
		"userContext": "USER PROFILE:\n- CurrentMood: stressed\n",
	})
	return bytes.NewReader(b)
}

func TestHandler_RepliesWithCannedText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reply = "drink some water"

	srv := httptest.NewServer(New(cfg, nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/mindio-chat", "application/json", chatPayload())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Reply != "drink some water" {
		t.Errorf("expected canned reply, got %q", body.Reply)
	}
}

func TestHandler_AcceptsAnyPostPath(t *testing.T) {
	srv := httptest.NewServer(New(DefaultConfig(), nil).Handler())
	defer srv.Close()

	for _, path := range []string{"/webhook/mindio-chat", "/hooks/other", "/x"} {
		resp, err := http.Post(srv.URL+path, "application/json", chatPayload())
		if err != nil {
			t.Fatalf("post %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("path %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestHandler_InvalidJSONReturns400(t *testing.T) {
	srv := httptest.NewServer(New(DefaultConfig(), nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/mindio-chat", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Errorf("expected 400 for invalid payload, got %d", resp.StatusCode)
	}
}

func TestHandler_EmptyBodyMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmptyBody = true

	srv := httptest.NewServer(New(cfg, nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/mindio-chat", "application/json", chatPayload())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if len(b) != 0 {
		t.Errorf("expected empty body, got %d bytes: %s", len(b), b)
	}
}

func TestHandler_ErrorStatusMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Status = 502

	srv := httptest.NewServer(New(cfg, nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/mindio-chat", "application/json", chatPayload())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 502 {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == "" {
		t.Error("expected error message in body")
	}
}

func TestHandler_DelayMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delay = 100 * time.Millisecond

	srv := httptest.NewServer(New(cfg, nil).Handler())
	defer srv.Close()

	start := time.Now()
	resp, err := http.Post(srv.URL+"/webhook/mindio-chat", "application/json", chatPayload())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	if elapsed := time.Since(start); elapsed < cfg.Delay {
		t.Errorf("expected at least %s delay, got %s", cfg.Delay, elapsed)
	}
}

func TestHandler_Healthz(t *testing.T) {
	srv := httptest.NewServer(New(DefaultConfig(), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
