package domain

import (
	"strings"
	"testing"
	"time"
)

// --- helpers ---

func testRuntime(t *testing.T, vars Vars, now func() time.Time, uuidFn func() (string, error)) *RuntimeResolver {
	t.Helper()
	if now == nil {
		now = func() time.Time { return time.Unix(1700000000, 0) }
	}
	if uuidFn == nil {
		uuidFn = func() (string, error) { return "00000000-0000-0000-0000-000000000000", nil }
	}
	vr := NewVarResolver(WithNow(now), WithUUID(uuidFn))
	rt, err := vr.NewRuntime(vars)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return rt
}

// --- ResolveString ---

func TestResolveString_NoPlaceholders(t *testing.T) {
	rt := testRuntime(t, Vars{}, nil, nil)
	got, err := rt.ResolveString("hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}

func TestResolveString_BaseURLAndToken(t *testing.T) {
	rt := testRuntime(t, Vars{
		"base_url": "http://127.0.0.1:8000",
		"token":    "abc123",
	}, nil, nil)

	got, err := rt.ResolveString("{{base_url}}/auth/me?t={{token}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "http://127.0.0.1:8000/auth/me?t=abc123"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveString_MissingVar(t *testing.T) {
	rt := testRuntime(t, Vars{"base_url": "http://x"}, nil, nil)

	_, err := rt.ResolveString("Bearer {{token}}")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, KindMissingVar) {
		t.Fatalf("expected KindMissingVar, got: %v", err)
	}
	if !strings.Contains(err.Error(), "missing variable: token") {
		t.Fatalf("expected message to name the variable, got: %v", err)
	}
}

func TestResolveString_UnclosedPlaceholder(t *testing.T) {
	rt := testRuntime(t, Vars{}, nil, nil)

	_, err := rt.ResolveString("{{base_url")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got: %v", err)
	}
}

func TestResolveString_Builtins(t *testing.T) {
	rt := testRuntime(t, Vars{},
		func() time.Time { return time.Unix(1700000000, 0) },
		func() (string, error) { return "11111111-2222-3333-4444-555555555555", nil },
	)

	got, err := rt.ResolveString("ts={{$timestamp}} id={{$uuid}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "ts=1700000000 id=11111111-2222-3333-4444-555555555555"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveString_UUIDStableWithinRuntime(t *testing.T) {
	rt := testRuntime(t, Vars{}, nil, nil)

	a, err := rt.ResolveString("{{$uuid}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := rt.ResolveString("{{$uuid}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected stable uuid within one runtime, got %q and %q", a, b)
	}
}

// --- ResolveStep ---

func TestResolveStep_ResolvesURLHeadersAndBody(t *testing.T) {
	rt := testRuntime(t, Vars{
		"base_url": "http://127.0.0.1:8000",
		"token":    "tok-1",
		"email":    "smoke@mindio.app",
	}, nil, nil)

	step := StepSpec{
		Name:   "identity",
		Method: MethodGet,
		URL:    "{{base_url}}/auth/me",
		Headers: Headers{
			"Authorization": "Bearer {{token}}",
		},
		Body: BodySpec{
			Type: BodyJSON,
			JSON: map[string]any{
				"email":   "{{email}}",
				"history": []any{},
				"count":   float64(2),
			},
		},
	}

	resolved, err := rt.ResolveStep(step)
	if err != nil {
		t.Fatalf("ResolveStep: %v", err)
	}

	if resolved.URL != "http://127.0.0.1:8000/auth/me" {
		t.Fatalf("unexpected url: %s", resolved.URL)
	}
	if resolved.Headers["Authorization"] != "Bearer tok-1" {
		t.Fatalf("unexpected auth header: %s", resolved.Headers["Authorization"])
	}
	if resolved.Body.JSON["email"] != "smoke@mindio.app" {
		t.Fatalf("unexpected body email: %v", resolved.Body.JSON["email"])
	}
	if resolved.Body.JSON["count"] != float64(2) {
		t.Fatalf("expected non-string values untouched, got %v", resolved.Body.JSON["count"])
	}

	// Input must not be mutated.
	if step.URL != "{{base_url}}/auth/me" {
		t.Fatalf("input step mutated: %s", step.URL)
	}
}

func TestResolveStep_MissingTokenFailsFast(t *testing.T) {
	rt := testRuntime(t, Vars{"base_url": "http://x"}, nil, nil)

	step := StepSpec{
		Name:    "identity",
		Method:  MethodGet,
		URL:     "{{base_url}}/auth/me",
		Headers: Headers{"Authorization": "Bearer {{token}}"},
		Body:    BodySpec{Type: BodyNone},
	}

	_, err := rt.ResolveStep(step)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, KindMissingVar) {
		t.Fatalf("expected KindMissingVar, got: %v", err)
	}
}
