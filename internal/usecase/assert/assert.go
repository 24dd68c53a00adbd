package assert

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/PaesslerAG/jsonpath"
)

func Status(expected int, got int) domain.AssertionResult {
	if got == expected {
		return domain.AssertionResult{
			Name:    "status",
			Passed:  true,
			Message: fmt.Sprintf("status %d", got),
		}
	}

	return domain.AssertionResult{
		Name:    "status",
		Passed:  false,
		Message: fmt.Sprintf("expected status %d, got %d", expected, got),
	}
}

// StatusIn passes when the observed status is one of the accepted codes.
// Used for steps with more than one legitimate outcome (register: 201 or 409).
func StatusIn(accepted []int, got int) domain.AssertionResult {
	for _, s := range accepted {
		if got == s {
			return domain.AssertionResult{
				Name:    "status_in",
				Passed:  true,
				Message: fmt.Sprintf("status %d accepted", got),
			}
		}
	}

	return domain.AssertionResult{
		Name:    "status_in",
		Passed:  false,
		Message: fmt.Sprintf("expected status in %v, got %d", accepted, got),
	}
}

// Success passes for any 2xx status.
func Success(got int) domain.AssertionResult {
	if got >= 200 && got < 300 {
		return domain.AssertionResult{
			Name:    "status_2xx",
			Passed:  true,
			Message: fmt.Sprintf("status %d", got),
		}
	}

	return domain.AssertionResult{
		Name:    "status_2xx",
		Passed:  false,
		Message: fmt.Sprintf("expected 2xx status, got %d", got),
	}
}

func MaxLatency(maxMs int, latencyMs int64) domain.AssertionResult {
	if latencyMs <= int64(maxMs) {
		return domain.AssertionResult{
			Name:    "max_ms",
			Passed:  true,
			Message: fmt.Sprintf("latency %dms <= %dms", latencyMs, maxMs),
		}
	}

	return domain.AssertionResult{
		Name:    "max_ms",
		Passed:  false,
		Message: fmt.Sprintf("expected latency <= %dms, got %dms", maxMs, latencyMs),
	}
}

// Evaluate applies the expectations spec against the observed response data.
// It parses JSON only if JSONPath assertions are present.
func Evaluate(spec domain.ExpectSpec, status int, latencyMs int64, body []byte) []domain.AssertionResult {
	var out []domain.AssertionResult

	if spec.Status != nil {
		out = append(out, Status(*spec.Status, status))
	}
	if len(spec.StatusIn) > 0 {
		out = append(out, StatusIn(spec.StatusIn, status))
	}
	if spec.Success {
		out = append(out, Success(status))
	}
	if spec.MaxLatencyMS != nil {
		out = append(out, MaxLatency(*spec.MaxLatencyMS, latencyMs))
	}

	if len(spec.JSONPath) == 0 {
		return out
	}

	doc, err := parseJSON(body)
	if err != nil {
		for expr, a := range spec.JSONPath {
			out = append(out, jsonPathChecks(expr, a, nil,
				fmt.Errorf("response body is not valid JSON"))...)
		}
		return out
	}

	for expr, a := range spec.JSONPath {
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, jsonPathChecks(expr, a, val, getErr)...)
	}

	return out
}

func jsonPathChecks(expr string, a domain.JSONPathAssertion, val any, getErr error) []domain.AssertionResult {
	var out []domain.AssertionResult
	if a.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if a.Eq != nil {
		out = append(out, checkEq(expr, val, getErr, *a.Eq))
	}
	if a.Contains != nil {
		out = append(out, checkContains(expr, val, getErr, *a.Contains))
	}
	return out
}

func checkExists(expr string, val any, getErr error) domain.AssertionResult {
	if getErr != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("invalid jsonpath %q: %v", expr, getErr),
		}
	}
	if isEmptyJSONPathValue(val) {
		return domain.AssertionResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: expected value to exist, got empty", expr),
		}
	}
	return domain.AssertionResult{
		Name:    "jsonpath.exists",
		Passed:  true,
		Message: fmt.Sprintf("jsonpath %q exists", expr),
	}
}

func checkEq(expr string, val any, getErr error, expected string) domain.AssertionResult {
	if getErr != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.eq",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr),
		}
	}
	s, err := jsonPathToString(val)
	if err != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.eq",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	if s == expected {
		return domain.AssertionResult{
			Name:    "jsonpath.eq",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q eq %q", expr, expected),
		}
	}
	return domain.AssertionResult{
		Name:    "jsonpath.eq",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: expected %q, got %q", expr, expected, s),
	}
}

func checkContains(expr string, val any, getErr error, sub string) domain.AssertionResult {
	if getErr != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.contains",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr),
		}
	}
	s, err := jsonPathToString(val)
	if err != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.contains",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	if strings.Contains(s, sub) {
		return domain.AssertionResult{
			Name:    "jsonpath.contains",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q contains %q", expr, sub),
		}
	}
	return domain.AssertionResult{
		Name:    "jsonpath.contains",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: %q does not contain %q", expr, s, sub),
	}
}

func jsonPathToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyJSONPathValue(v any) bool {
	if v == nil {
		return true
	}

	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
