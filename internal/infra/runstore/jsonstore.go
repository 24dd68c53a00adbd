// Package runstore persists smoke run reports as JSON artifacts under the
// probe directory, with sensitive values masked and a JSONL index for quick
// listing.
package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
)

const defaultReportsDir = "reports"
const maskValue = "********"

type JSONStore struct {
	rootDir        string
	reportsDirName string
	maskingEnabled bool
	writeIndex     bool
	now            func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: reports/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	reportsDir := cfg.Paths.ReportsDir
	if strings.TrimSpace(reportsDir) == "" {
		reportsDir = defaultReportsDir
	}

	s := &JSONStore{
		rootDir:        root,
		reportsDirName: reportsDir,
		maskingEnabled: cfg.Masking.Enabled,
		writeIndex:     false,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*JSONStore)(nil)

func (s *JSONStore) SaveReport(report domain.RunReport) (string, error) {
	dir := filepath.Join(s.rootDir, s.reportsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	ts := report.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := report
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}

	slug := slugify(report.Target)
	if slug == "" {
		slug = "smoke"
	}

	filename := fmt.Sprintf("%s_%s.json", ts.Format("20060102T150405Z"), slug)
	id := strings.TrimSuffix(filename, ".json")
	path := filepath.Join(dir, filename)

	if s.maskingEnabled {
		toSave = maskReport(toSave)
	}

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, id, filename, report)
	}

	return id, nil
}

func (s *JSONStore) appendIndex(dir, id, filename string, report domain.RunReport) error {
	type idx struct {
		ID        string    `json:"id"`
		File      string    `json:"file"`
		Target    string    `json:"target"`
		BaseURL   string    `json:"base_url"`
		StartedAt time.Time `json:"started_at"`
		Failed    int       `json:"failed_steps"`
		Stable    *bool     `json:"same_day_stable,omitempty"`
	}

	entry := idx{
		ID:        id,
		File:      filename,
		Target:    report.Target,
		BaseURL:   report.BaseURL,
		StartedAt: report.StartedAt,
		Failed:    report.FailedSteps(),
	}
	if report.Stability != nil {
		stable := report.Stability.Stable
		entry.Stable = &stable
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

// maskReport returns a masked copy (does NOT mutate the input).
func maskReport(report domain.RunReport) domain.RunReport {
	out := report
	out.Steps = make([]domain.StepResult, 0, len(report.Steps))

	for _, sr := range report.Steps {
		c := sr

		// Deep copy maps/slices we will touch.
		c.Extracted = cloneVars(sr.Extracted)
		c.Extracts = cloneExtractResults(sr.Extracts)
		c.Assertions = cloneAssertionResults(sr.Assertions)
		c.Response = cloneResponseSnapshot(sr.Response)

		for k := range c.Extracted {
			if isSensitiveKey(k) {
				c.Extracted[k] = maskValue
			}
		}

		for k := range c.Response.Headers {
			if isSensitiveHeaderKey(k) {
				vals := c.Response.Headers[k]
				for i := range vals {
					vals[i] = maskValue
				}
				c.Response.Headers[k] = vals
			}
		}

		out.Steps = append(out.Steps, c)
	}

	return out
}

func isSensitiveKey(k string) bool {
	kk := strings.ToLower(k)
	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password")
}

func isSensitiveHeaderKey(k string) bool {
	kk := strings.ToLower(strings.TrimSpace(k))
	switch kk {
	case "authorization", "proxy-authorization", "cookie", "set-cookie", "x-api-key", "x-auth-token":
		return true
	}

	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password") ||
		strings.Contains(kk, "api-key") ||
		strings.Contains(kk, "apikey")
}

func cloneVars(in domain.Vars) domain.Vars {
	if in == nil {
		return domain.Vars{}
	}
	out := domain.Vars{}
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneExtractResults(in []domain.ExtractResult) []domain.ExtractResult {
	if in == nil {
		return []domain.ExtractResult{}
	}
	out := make([]domain.ExtractResult, len(in))
	copy(out, in)
	return out
}

func cloneAssertionResults(in []domain.AssertionResult) []domain.AssertionResult {
	if in == nil {
		return []domain.AssertionResult{}
	}
	out := make([]domain.AssertionResult, len(in))
	copy(out, in)
	return out
}

func cloneResponseSnapshot(in domain.ResponseSnapshot) domain.ResponseSnapshot {
	out := domain.ResponseSnapshot{
		Truncated: in.Truncated,
	}

	// Headers deep copy
	if in.Headers != nil {
		out.Headers = make(map[string][]string, len(in.Headers))
		for k, v := range in.Headers {
			cp := make([]string, len(v))
			copy(cp, v)
			out.Headers[k] = cp
		}
	} else {
		out.Headers = map[string][]string{}
	}

	// Body copy (optional)
	if in.Body != nil {
		out.Body = make([]byte, len(in.Body))
		copy(out.Body, in.Body)
	}

	return out
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
