package probe

import (
	"strings"
	"testing"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
)

func baseSettings() Settings {
	return Settings{
		Target:     "local",
		BaseURL:    "http://127.0.0.1:8000",
		Email:      "smoke@mindio.app",
		Password:   "smoke-test-1",
		WebhookURL: "http://127.0.0.1:5678/webhook/mindio-chat",
	}
}

func stepNames(p domain.Plan) []string {
	names := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		names = append(names, s.Name)
	}
	return names
}

func findStep(t *testing.T, p domain.Plan, name string) domain.StepSpec {
	t.Helper()
	for _, s := range p.Steps {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("step %q not found in plan (%v)", name, stepNames(p))
	return domain.StepSpec{}
}

func TestBuildPlan_DefaultStepOrder(t *testing.T) {
	plan, err := BuildPlan(baseSettings())
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	want := []string{
		"health", "login", "identity", "personality",
		"webhook.direct", "chat.relay", "suggestions.generate",
	}
	got := stepNames(plan)
	if len(got) != len(want) {
		t.Fatalf("expected %d steps, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if plan.Daily == nil {
		t.Fatal("expected daily check in plan")
	}
	if plan.Daily.Step.TimeoutMS != dailyTimeoutMS {
		t.Errorf("expected daily timeout %d, got %d", dailyTimeoutMS, plan.Daily.Step.TimeoutMS)
	}
	if len(plan.Daily.IDPaths) != 2 || plan.Daily.IDPaths[0] != "$.suggestion_id" || plan.Daily.IDPaths[1] != "$.id" {
		t.Errorf("unexpected daily id paths: %v", plan.Daily.IDPaths)
	}
}

func TestBuildPlan_RegisterTogglePrependsBeforeLogin(t *testing.T) {
	s := baseSettings()
	s.Register = true

	plan, err := BuildPlan(s)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	names := stepNames(plan)
	if names[1] != "register" || names[2] != "login" {
		t.Fatalf("expected register before login, got %v", names)
	}

	reg := findStep(t, plan, "register")
	if len(reg.Expect.StatusIn) != 2 || reg.Expect.StatusIn[0] != 201 || reg.Expect.StatusIn[1] != 409 {
		t.Errorf("expected register to accept 201 and 409, got %v", reg.Expect.StatusIn)
	}
	if reg.Body.JSON["username"] != "smoke" {
		t.Errorf("expected username derived from email local part, got %v", reg.Body.JSON["username"])
	}
}

func TestBuildPlan_ExtendedAddsMoodStepsAfterPersonality(t *testing.T) {
	s := baseSettings()
	s.Extended = true

	plan, err := BuildPlan(s)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	names := stepNames(plan)
	pi, ai, li := -1, -1, -1
	for i, n := range names {
		switch n {
		case "personality":
			pi = i
		case "mood.add":
			ai = i
		case "mood.list":
			li = i
		}
	}
	if pi == -1 || ai != pi+1 || li != pi+2 {
		t.Fatalf("expected mood steps right after personality, got %v", names)
	}
}

func TestBuildPlan_SkipWebhookOmitsDirectProbe(t *testing.T) {
	s := baseSettings()
	s.SkipWebhook = true
	s.WebhookURL = ""

	plan, err := BuildPlan(s)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	for _, n := range stepNames(plan) {
		if n == "webhook.direct" {
			t.Fatal("expected webhook.direct omitted with SkipWebhook")
		}
	}
	// The relay probe through the backend still runs.
	findStep(t, plan, "chat.relay")
}

func TestBuildPlan_AuthedStepsCarryBearerPlaceholder(t *testing.T) {
	s := baseSettings()
	s.Extended = true

	plan, err := BuildPlan(s)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	authed := []string{"identity", "personality", "mood.add", "mood.list", "chat.relay", "suggestions.generate"}
	for _, name := range authed {
		step := findStep(t, plan, name)
		if step.Headers["Authorization"] != "Bearer {{token}}" {
			t.Errorf("step %s: expected bearer placeholder, got %q", name, step.Headers["Authorization"])
		}
	}

	if plan.Daily.Step.Headers["Authorization"] != "Bearer {{token}}" {
		t.Error("expected daily step to carry bearer placeholder")
	}

	// Login itself and the direct webhook probe never carry the token.
	if _, ok := findStep(t, plan, "login").Headers["Authorization"]; ok {
		t.Error("login must not carry an Authorization header")
	}
	if _, ok := findStep(t, plan, "webhook.direct").Headers["Authorization"]; ok {
		t.Error("webhook.direct must not carry an Authorization header")
	}
}

func TestBuildPlan_WebhookStepIsOpaque(t *testing.T) {
	plan, err := BuildPlan(baseSettings())
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	wh := findStep(t, plan, "webhook.direct")
	if wh.Parse != domain.ParseOpaque {
		t.Errorf("expected opaque parse mode, got %q", wh.Parse)
	}
	if wh.URL != "{{webhook_url}}" {
		t.Errorf("expected webhook URL placeholder, got %q", wh.URL)
	}
	if wh.Headers["X-Probe-Id"] != "{{$uuid}}" {
		t.Errorf("expected uuid correlation header, got %q", wh.Headers["X-Probe-Id"])
	}

	ctx, ok := wh.Body.JSON["userContext"].(string)
	if !ok {
		t.Fatalf("expected userContext string, got %T", wh.Body.JSON["userContext"])
	}
	for _, fragment := range []string{"USER PROFILE:", "AgeRange: 25-34", "CurrentMood: stressed", "anxiety, sleep, motivation"} {
		if !strings.Contains(ctx, fragment) {
			t.Errorf("expected userContext to contain %q, got:\n%s", fragment, ctx)
		}
	}
}

func TestBuildPlan_LoginExtractsToken(t *testing.T) {
	plan, err := BuildPlan(baseSettings())
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	login := findStep(t, plan, "login")
	if login.Extract["token"] != "$.access_token" {
		t.Errorf("expected token extraction from $.access_token, got %v", login.Extract)
	}
	if _, ok := login.Expect.JSONPath["$.access_token"]; !ok {
		t.Error("expected existence assertion on $.access_token")
	}
}

func TestBuildPlan_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	s := baseSettings()
	s.BaseURL = "http://127.0.0.1:8000/"

	plan, err := BuildPlan(s)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if plan.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("expected trailing slash trimmed, got %q", plan.BaseURL)
	}
	if plan.Vars["base_url"] != "http://127.0.0.1:8000" {
		t.Errorf("expected base_url var trimmed, got %q", plan.Vars["base_url"])
	}
}

func TestBuildPlan_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"missing base URL", func(s *Settings) { s.BaseURL = "  " }},
		{"missing email", func(s *Settings) { s.Email = "" }},
		{"missing password", func(s *Settings) { s.Password = "" }},
		{"missing webhook URL", func(s *Settings) { s.WebhookURL = "" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := baseSettings()
			c.mutate(&s)

			_, err := BuildPlan(s)
			if err == nil {
				t.Fatal("expected error")
			}
			if !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Errorf("expected KindInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestUsernameFromEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"smoke@mindio.app", "smoke"},
		{"no-at-sign", "no-at-sign"},
		{"@leading", "@leading"},
	}
	for _, c := range cases {
		if got := usernameFromEmail(c.in); got != c.want {
			t.Errorf("usernameFromEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
