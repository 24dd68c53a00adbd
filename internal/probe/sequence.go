package probe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
)

// Settings is the fully-resolved configuration for one smoke run
// (defaults < environment < target file < flags, merged by the CLI).
type Settings struct {
	Target     string
	BaseURL    string
	Email      string
	Password   string
	WebhookURL string

	// Register prepends an /auth/register step (201 and 409 both accepted).
	Register bool

	// Extended adds the mood check-in steps after the personality submit.
	Extended bool

	// SkipWebhook omits the direct webhook probe, for runners that cannot
	// reach the automation endpoint.
	SkipWebhook bool
}

// The fixed questionnaire payload submitted by every run.
const (
	answerAgeRange = "25-34"
	answerGender   = "female"
	answerMood     = "stressed"
)

var answerTopics = []string{"anxiety", "sleep", "motivation"}

const chatMessage = "I have been feeling stressed today, what would you suggest?"

// dailyTimeoutMS bounds each daily-suggestion call; the endpoint may block on
// webhook generation server-side.
const dailyTimeoutMS = 30_000

// BuildPlan assembles the smoke sequence for the given settings.
//
// Step order: health, [register], login, identity, personality, [mood.add,
// mood.list], [webhook.direct], chat.relay, suggestions.generate, then the
// daily stability check (two reads of /suggestions/daily).
func BuildPlan(s Settings) (domain.Plan, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if baseURL == "" {
		return domain.Plan{}, &domain.OpError{
			Op:   "probe.plan",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("base URL is required"),
		}
	}
	if strings.TrimSpace(s.Email) == "" || strings.TrimSpace(s.Password) == "" {
		return domain.Plan{}, &domain.OpError{
			Op:   "probe.plan",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("login email and password are required"),
		}
	}
	if !s.SkipWebhook && strings.TrimSpace(s.WebhookURL) == "" {
		return domain.Plan{}, &domain.OpError{
			Op:   "probe.plan",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("webhook URL is required (or pass --skip-webhook)"),
		}
	}

	vars := domain.Vars{
		"base_url":    baseURL,
		"webhook_url": strings.TrimSpace(s.WebhookURL),
	}

	steps := []domain.StepSpec{
		{
			Name:   "health",
			Method: domain.MethodGet,
			URL:    "{{base_url}}/",
			Body:   domain.BodySpec{Type: domain.BodyNone},
			Parse:  domain.ParseJSON,
			Expect: domain.ExpectSpec{Success: true},
		},
	}

	if s.Register {
		steps = append(steps, domain.StepSpec{
			Name:   "register",
			Method: domain.MethodPost,
			URL:    "{{base_url}}/auth/register",
			Body: domain.BodySpec{
				Type: domain.BodyJSON,
				JSON: map[string]any{
					"email":    s.Email,
					"username": usernameFromEmail(s.Email),
					"password": s.Password,
				},
			},
			Parse: domain.ParseJSON,
			// 409 means the smoke account already exists; that's fine.
			Expect: domain.ExpectSpec{StatusIn: []int{201, 409}},
		})
	}

	steps = append(steps,
		domain.StepSpec{
			Name:   "login",
			Method: domain.MethodPost,
			URL:    "{{base_url}}/auth/login",
			Body: domain.BodySpec{
				Type: domain.BodyJSON,
				JSON: map[string]any{
					"email":    s.Email,
					"password": s.Password,
				},
			},
			Parse: domain.ParseJSON,
			Expect: domain.ExpectSpec{
				Success: true,
				JSONPath: map[string]domain.JSONPathAssertion{
					"$.access_token": {Exists: true},
				},
			},
			Extract: domain.ExtractSpec{
				"token": "$.access_token",
			},
		},
		domain.StepSpec{
			Name:    "identity",
			Method:  domain.MethodGet,
			URL:     "{{base_url}}/auth/me",
			Headers: bearerHeaders(),
			Body:    domain.BodySpec{Type: domain.BodyNone},
			Parse:   domain.ParseJSON,
			Expect: domain.ExpectSpec{
				Success: true,
				JSONPath: map[string]domain.JSONPathAssertion{
					"$.email": {Eq: strPtr(s.Email)},
				},
			},
		},
		domain.StepSpec{
			Name:    "personality",
			Method:  domain.MethodPost,
			URL:     "{{base_url}}/personality/submit",
			Headers: bearerHeaders(),
			Body: domain.BodySpec{
				Type: domain.BodyJSON,
				JSON: map[string]any{
					"q1_answer": answerAgeRange,
					"q2_answer": answerGender,
					"q3_answer": answerMood,
					"q4_answer": topicsAny(),
				},
			},
			Parse:  domain.ParseJSON,
			Expect: domain.ExpectSpec{Success: true},
		},
	)

	if s.Extended {
		steps = append(steps,
			domain.StepSpec{
				Name:    "mood.add",
				Method:  domain.MethodPost,
				URL:     "{{base_url}}/mood/add",
				Headers: bearerHeaders(),
				Body: domain.BodySpec{
					Type: domain.BodyJSON,
					JSON: map[string]any{
						"mood": "calm",
						"note": "smoke probe check-in",
					},
				},
				Parse:  domain.ParseJSON,
				Expect: domain.ExpectSpec{Success: true},
			},
			domain.StepSpec{
				Name:    "mood.list",
				Method:  domain.MethodGet,
				URL:     "{{base_url}}/mood/list",
				Headers: bearerHeaders(),
				Body:    domain.BodySpec{Type: domain.BodyNone},
				Parse:   domain.ParseJSON,
				Expect:  domain.ExpectSpec{Success: true},
			},
		)
	}

	if !s.SkipWebhook {
		steps = append(steps, domain.StepSpec{
			Name:   "webhook.direct",
			Method: domain.MethodPost,
			URL:    "{{webhook_url}}",
			Headers: domain.Headers{
				"Accept":     "application/json",
				"User-Agent": "mindprobe/1.0",
				"X-Probe-Id": "{{$uuid}}",
			},
			Body: domain.BodySpec{
				Type: domain.BodyJSON,
				JSON: map[string]any{
					"message":     chatMessage,
					"history":     []any{},
					"userContext": profileContext(),
				},
			},
			// The automation response has no guaranteed shape; report it as
			// raw bytes and only treat transport failures as fatal.
			Parse: domain.ParseOpaque,
		})
	}

	steps = append(steps,
		domain.StepSpec{
			Name:    "chat.relay",
			Method:  domain.MethodPost,
			URL:     "{{base_url}}/ai/chat",
			Headers: withProbeID(bearerHeaders()),
			Body: domain.BodySpec{
				Type: domain.BodyJSON,
				JSON: map[string]any{
					"message": chatMessage,
					"history": []any{},
				},
			},
			Parse: domain.ParseJSON,
			Expect: domain.ExpectSpec{
				Success: true,
				JSONPath: map[string]domain.JSONPathAssertion{
					"$.reply": {Exists: true},
				},
			},
		},
		domain.StepSpec{
			Name:    "suggestions.generate",
			Method:  domain.MethodPost,
			URL:     "{{base_url}}/suggestions/generate",
			Headers: bearerHeaders(),
			Body:    domain.BodySpec{Type: domain.BodyNone},
			Parse:   domain.ParseJSON,
			Expect:  domain.ExpectSpec{Success: true},
		},
	)

	daily := &domain.DailyCheck{
		Step: domain.StepSpec{
			Name:      "suggestions.daily",
			Method:    domain.MethodGet,
			URL:       "{{base_url}}/suggestions/daily",
			Headers:   bearerHeaders(),
			Body:      domain.BodySpec{Type: domain.BodyNone},
			Parse:     domain.ParseJSON,
			TimeoutMS: dailyTimeoutMS,
			Expect:    domain.ExpectSpec{Success: true},
		},
		IDPaths: []string{"$.suggestion_id", "$.id"},
	}

	return domain.Plan{
		Target:  s.Target,
		BaseURL: baseURL,
		Vars:    vars,
		Steps:   steps,
		Daily:   daily,
	}, nil
}

func bearerHeaders() domain.Headers {
	return domain.Headers{
		"Authorization": "Bearer {{token}}",
	}
}

func withProbeID(h domain.Headers) domain.Headers {
	h["X-Probe-Id"] = "{{$uuid}}"
	return h
}

// profileContext summarizes the questionnaire answers the way the backend
// phrases the user context it forwards to the automation webhook.
func profileContext() string {
	return fmt.Sprintf(
		"USER PROFILE:\n- AgeRange: %s\n- Gender: %s\n- CurrentMood: %s\n- SupportTopics: %s\n",
		answerAgeRange, answerGender, answerMood, strings.Join(answerTopics, ", "),
	)
}

func topicsAny() []any {
	out := make([]any, 0, len(answerTopics))
	for _, t := range answerTopics {
		out = append(out, t)
	}
	return out
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func strPtr(s string) *string { return &s }
