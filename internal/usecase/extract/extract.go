package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/PaesslerAG/jsonpath"
)

// Apply extracts variables from a JSON response body using JSONPath rules.
// rules: map[varName]jsonPathExpr
//
// Policy:
// - If body is not JSON -> every extract rule fails (no vars extracted).
// - If a rule fails -> it's reported in ExtractResult; other rules still run.
func Apply(body []byte, rules domain.ExtractSpec) (domain.Vars, []domain.ExtractResult) {
	if len(rules) == 0 {
		return domain.Vars{}, []domain.ExtractResult{}
	}

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys) // stable output for tests/UI

	doc, err := parseJSON(body)
	if err != nil {
		out := make([]domain.ExtractResult, 0, len(keys))
		for _, name := range keys {
			expr := strings.TrimSpace(rules[name])
			out = append(out, domain.ExtractResult{
				Name:    name,
				Success: false,
				Message: fmt.Sprintf("extract %q (%s): response body is not valid JSON", name, expr),
			})
		}
		return domain.Vars{}, out
	}

	extracted := domain.Vars{}
	results := make([]domain.ExtractResult, 0, len(keys))

	for _, name := range keys {
		expr := strings.TrimSpace(rules[name])
		if expr == "" {
			results = append(results, domain.ExtractResult{
				Name:    name,
				Success: false,
				Message: fmt.Sprintf("extract %q: empty jsonpath expression", name),
			})
			continue
		}

		s, ok, reason := tryPath(doc, expr)
		if !ok {
			results = append(results, domain.ExtractResult{
				Name:    name,
				Success: false,
				Message: fmt.Sprintf("extract %q (%s): %s", name, expr, reason),
			})
			continue
		}

		extracted[name] = s
		results = append(results, domain.ExtractResult{
			Name:    name,
			Success: true,
			Message: fmt.Sprintf("extracted %q", name),
		})
	}

	return extracted, results
}

// First tries the given JSONPath expressions in order against the body and
// returns the first non-empty value. Used for identifier fields with more
// than one possible name (suggestion_id vs id).
func First(body []byte, exprs ...string) (string, bool) {
	doc, err := parseJSON(body)
	if err != nil {
		return "", false
	}

	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		if s, ok, _ := tryPath(doc, expr); ok {
			return s, true
		}
	}
	return "", false
}

func tryPath(doc any, expr string) (value string, ok bool, reason string) {
	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return "", false, fmt.Sprintf("jsonpath error: %v", err)
	}
	if isEmptyValue(val) {
		return "", false, "no value found"
	}

	s, err := toString(val)
	if err != nil {
		return "", false, fmt.Sprintf("cannot convert value to string: %v", err)
	}
	return s, true, ""
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyValue(v any) bool {
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

func toString(v any) (string, error) {
	// Common case: jsonpath returns a slice with 1 element
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", fmt.Errorf("empty array")
		}
		if len(arr) == 1 {
			return toString(arr[0])
		}
		b, err := json.Marshal(arr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}
