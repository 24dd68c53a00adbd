package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
	ucassert "github.com/BeyzaCankayaa/mindprobe/internal/usecase/assert"
	ucextract "github.com/BeyzaCankayaa/mindprobe/internal/usecase/extract"
)

// StepEvent notifies observers (e.g. the live watch view) about a finished step.
type StepEvent struct {
	Result domain.StepResult
	Index  int
	Total  int
}

// RunSmoke executes a smoke plan: a strictly sequential, fail-fast walk of the
// steps, threading extracted vars (notably the login token) into later steps,
// followed by the same-day stability check.
type RunSmoke struct {
	runner ports.StepRunner
	store  ports.ArtifactStore

	strictDaily bool
	onStep      func(StepEvent)
}

type RunSmokeOption func(*RunSmoke)

// WithStore persists the finished (or aborted) report as an artifact.
func WithStore(s ports.ArtifactStore) RunSmokeOption {
	return func(uc *RunSmoke) { uc.store = s }
}

// WithStrictDaily upgrades a same-day stability mismatch to a run failure.
func WithStrictDaily(strict bool) RunSmokeOption {
	return func(uc *RunSmoke) { uc.strictDaily = strict }
}

// WithStepObserver registers a callback invoked after every executed step.
func WithStepObserver(fn func(StepEvent)) RunSmokeOption {
	return func(uc *RunSmoke) { uc.onStep = fn }
}

func NewRunSmoke(runner ports.StepRunner, opts ...RunSmokeOption) *RunSmoke {
	uc := &RunSmoke{runner: runner}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs the plan. It returns the report (complete or partial), the
// artifact id when a store is configured, and the first fatal error.
//
// The stability comparison itself is observational unless strict mode is on:
// both identifiers are recorded in the report either way.
func (uc *RunSmoke) Execute(ctx context.Context, plan domain.Plan) (domain.RunReport, string, error) {
	report := domain.RunReport{
		Target:    plan.Target,
		BaseURL:   plan.BaseURL,
		StartedAt: time.Now(),
		Steps:     make([]domain.StepResult, 0, len(plan.Steps)+2),
	}

	vars := domain.Merge(plan.Vars, nil)

	total := len(plan.Steps)
	if plan.Daily != nil {
		total += 2
	}

	for i, step := range plan.Steps {
		res, err := uc.runStep(ctx, step, vars, i, total)
		if err != nil {
			return uc.finish(report), "", err
		}

		report.Steps = append(report.Steps, res)

		for k, v := range res.Extracted {
			vars[k] = v
		}

		if res.Failed() {
			report = uc.finish(report)
			id := uc.save(report)
			return report, id, stepFailedErr(res)
		}
	}

	if plan.Daily != nil {
		stability, err := uc.runDaily(ctx, plan, vars, &report, total)
		if err != nil {
			report = uc.finish(report)
			id := uc.save(report)
			return report, id, err
		}
		report.Stability = stability
	}

	report = uc.finish(report)
	id := uc.save(report)

	if uc.strictDaily && report.Stability != nil && !report.Stability.Stable {
		return report, id, &domain.OpError{
			Op:   "smoke.daily",
			Kind: domain.KindStepFailed,
			Err: fmt.Errorf("daily suggestion changed within the same day: %q != %q",
				report.Stability.FirstID, report.Stability.SecondID),
		}
	}

	return report, id, nil
}

// runDaily executes the daily-suggestion read twice in quick succession and
// compares the identifier pulled from each response.
func (uc *RunSmoke) runDaily(ctx context.Context, plan domain.Plan, vars domain.Vars, report *domain.RunReport, total int) (*domain.StabilityResult, error) {
	ids := make([]string, 0, 2)

	for n := 0; n < 2; n++ {
		step := plan.Daily.Step
		step.Name = fmt.Sprintf("%s#%d", step.Name, n+1)

		res, err := uc.runStep(ctx, step, vars, len(plan.Steps)+n, total)
		if err != nil {
			return nil, err
		}

		id, ok := ucextract.First(res.Response.Body, plan.Daily.IDPaths...)
		er := domain.ExtractResult{
			Name:    "daily_id",
			Success: ok,
			Message: fmt.Sprintf("daily identifier (%v)", plan.Daily.IDPaths),
		}
		if ok {
			er.Message = fmt.Sprintf("extracted daily identifier %q", id)
			res.Extracted["daily_id"] = id
		}
		res.Extracts = append(res.Extracts, er)

		report.Steps = append(report.Steps, res)

		if res.Failed() {
			return nil, stepFailedErr(res)
		}
		ids = append(ids, id)
	}

	return &domain.StabilityResult{
		FirstID:  ids[0],
		SecondID: ids[1],
		Stable:   ids[0] == ids[1],
		Strict:   uc.strictDaily,
	}, nil
}

func (uc *RunSmoke) runStep(ctx context.Context, step domain.StepSpec, vars domain.Vars, index, total int) (domain.StepResult, error) {
	res, err := uc.runner.Run(ctx, step, vars)
	if err != nil {
		// Config-level issue (missing var, invalid placeholder): fatal.
		return domain.StepResult{}, err
	}

	if res.Error == nil && step.Parse == domain.ParseJSON {
		res.Assertions = ucassert.Evaluate(step.Expect, res.StatusCode, res.LatencyMS, res.Response.Body)

		if !json.Valid(res.Response.Body) {
			res.Assertions = append(res.Assertions, domain.AssertionResult{
				Name:    "json_body",
				Passed:  false,
				Message: "response body is not valid JSON",
			})
		}

		extracted, extractResults := ucextract.Apply(res.Response.Body, step.Extract)
		res.Extracts = extractResults
		res.Extracted = extracted
	}

	if uc.onStep != nil {
		uc.onStep(StepEvent{Result: res, Index: index, Total: total})
	}

	return res, nil
}

func (uc *RunSmoke) finish(report domain.RunReport) domain.RunReport {
	report.FinishedAt = time.Now()
	return report
}

func (uc *RunSmoke) save(report domain.RunReport) string {
	if uc.store == nil {
		return ""
	}
	id, err := uc.store.SaveReport(report)
	if err != nil {
		// Persistence is best-effort; the console report already happened.
		return ""
	}
	return id
}

func stepFailedErr(res domain.StepResult) error {
	msg := "expectation failed"
	if res.Error != nil {
		msg = fmt.Sprintf("%s (%s)", res.Error.Message, res.Error.Kind)
	} else {
		for _, a := range res.Assertions {
			if !a.Passed {
				msg = a.Message
				break
			}
		}
		for _, e := range res.Extracts {
			if !e.Success {
				msg = e.Message
				break
			}
		}
	}

	return &domain.OpError{
		Op:   "smoke." + res.Name,
		Kind: domain.KindStepFailed,
		Err:  fmt.Errorf("%s: %w", msg, domain.ErrStepFailed),
	}
}
