package domain

import (
	"context"
	"errors"
	"net"
	"time"
)

// RunErrorKind is a high-level classification of runtime errors.
type RunErrorKind string

const (
	RunErrorUnknown RunErrorKind = "unknown"
	RunErrorTimeout RunErrorKind = "timeout"
	RunErrorDNS     RunErrorKind = "dns"
	RunErrorConn    RunErrorKind = "connection"
)

// RunError represents a structured error produced by a step runner.
type RunError struct {
	Kind    RunErrorKind
	Message string
}

// NewRunError classifies a transport-level error into a RunError.
func NewRunError(err error) *RunError {
	if err == nil {
		return nil
	}

	re := &RunError{
		Kind:    RunErrorUnknown,
		Message: err.Error(),
	}

	if errors.Is(err, context.DeadlineExceeded) {
		re.Kind = RunErrorTimeout
		return re
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		re.Kind = RunErrorDNS
		return re
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		re.Kind = RunErrorTimeout
		return re
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		re.Kind = RunErrorConn
		return re
	}

	return re
}

// AssertionResult is the output of a single assertion.
type AssertionResult struct {
	Name    string
	Passed  bool
	Message string
}

// ExtractResult reports the outcome of one extraction rule.
type ExtractResult struct {
	Name    string
	Success bool
	Message string
}

// ResponseSnapshot stores a bounded view of the response.
// Keep it generic so the domain does not depend on net/http types.
type ResponseSnapshot struct {
	Headers   map[string][]string
	Body      []byte
	Truncated bool
}

// StepResult represents the result of executing a single smoke step.
type StepResult struct {
	Name   string
	Method HTTPMethod
	URL    string

	StatusCode int
	LatencyMS  int64

	Parse ParseMode

	Assertions []AssertionResult
	Extracts   []ExtractResult
	Extracted  Vars

	Response ResponseSnapshot
	Error    *RunError
}

// Failed reports whether the step counts as a fatal failure.
// Opaque steps fail only on transport errors; their body shape is never judged.
func (r StepResult) Failed() bool {
	if r.Error != nil {
		return true
	}
	if r.Parse == ParseOpaque {
		return false
	}
	for _, a := range r.Assertions {
		if !a.Passed {
			return true
		}
	}
	for _, e := range r.Extracts {
		if !e.Success {
			return true
		}
	}
	return false
}

// StabilityResult is the outcome of the same-day stability comparison.
type StabilityResult struct {
	FirstID  string
	SecondID string
	Stable   bool

	// Strict records whether a mismatch was configured to fail the run.
	Strict bool
}

// RunReport represents one complete smoke run for printing and persistence.
type RunReport struct {
	Target  string
	BaseURL string

	StartedAt  time.Time
	FinishedAt time.Time

	Steps     []StepResult
	Stability *StabilityResult
}

// FailedSteps counts fatal step failures in the report.
func (r RunReport) FailedSteps() int {
	n := 0
	for _, s := range r.Steps {
		if s.Failed() {
			n++
		}
	}
	return n
}
