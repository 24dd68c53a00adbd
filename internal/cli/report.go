package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
)

const opaquePreviewBytes = 200
const bodyPrintLimit = 2048

func printReport(w io.Writer, report domain.RunReport, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		// Wrap so the artifact id travels with the report without changing
		// the domain model.
		payload := map[string]any{
			"run_id": runID,
			"report": report,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyReport(w, report, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyReport(w io.Writer, report domain.RunReport, runID string) {
	total := report.FinishedAt.Sub(report.StartedAt)
	if report.StartedAt.IsZero() || report.FinishedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Target:   %s\n", orDash(report.Target))
	fmt.Fprintf(w, "Base URL: %s\n", report.BaseURL)
	fmt.Fprintf(w, "Started:  %s\n", report.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:   %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, s := range report.Steps {
		printStep(w, s)
	}

	printSummary(w, report, "")
}

func printStep(w io.Writer, s domain.StepResult) {
	status := "OK"
	if s.Parse == domain.ParseOpaque {
		status = "OPAQUE"
	}
	if s.Failed() {
		status = "FAIL"
	}

	fmt.Fprintf(w, "- [%s] %s (%s %s) %dms\n", status, s.Name, s.Method, s.URL, s.LatencyMS)

	if s.Error != nil {
		fmt.Fprintf(w, "  error: %s (%s)\n", s.Error.Message, s.Error.Kind)
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "  status: %d\n", s.StatusCode)

	if len(s.Assertions) > 0 {
		pass, fail := countAssertionPassFail(s.Assertions)
		fmt.Fprintf(w, "  assertions: %d pass / %d fail\n", pass, fail)
		for _, a := range s.Assertions {
			mark := "✓"
			if !a.Passed {
				mark = "✗"
			}
			fmt.Fprintf(w, "    %s %s: %s\n", mark, a.Name, a.Message)
		}
	}

	if len(s.Extracts) > 0 {
		ok, bad := countExtractPassFail(s.Extracts)
		fmt.Fprintf(w, "  extracts: %d ok / %d fail\n", ok, bad)
		for _, e := range s.Extracts {
			mark := "✓"
			if !e.Success {
				mark = "✗"
			}
			fmt.Fprintf(w, "    %s %s: %s\n", mark, e.Name, e.Message)
		}
	}

	if s.Parse == domain.ParseOpaque {
		printOpaqueResponse(w, s.Response)
	} else {
		printJSONBody(w, s.Response)
	}

	fmt.Fprintln(w)
}

// printOpaqueResponse dumps what was actually observed on the wire: headers,
// byte count and a short preview, with no judgement about the shape.
func printOpaqueResponse(w io.Writer, resp domain.ResponseSnapshot) {
	fmt.Fprintf(w, "  headers:\n")
	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Headers[k] {
			fmt.Fprintf(w, "    %s: %s\n", k, v)
		}
	}

	n := len(resp.Body)
	suffix := ""
	if resp.Truncated {
		suffix = " (truncated)"
	}
	fmt.Fprintf(w, "  body: %d bytes%s\n", n, suffix)

	if n == 0 {
		fmt.Fprintf(w, "  preview: (empty body)\n")
		return
	}

	preview := resp.Body
	if len(preview) > opaquePreviewBytes {
		preview = preview[:opaquePreviewBytes]
	}
	fmt.Fprintf(w, "  preview: %s\n", string(preview))
}

func printJSONBody(w io.Writer, resp domain.ResponseSnapshot) {
	if len(resp.Body) == 0 {
		return
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, resp.Body, "  ", "  "); err != nil {
		// Not valid JSON; the json_body assertion already flagged it.
		fmt.Fprintf(w, "  body (raw): %s\n", previewOf(resp.Body, opaquePreviewBytes))
		return
	}

	out := buf.Bytes()
	if len(out) > bodyPrintLimit {
		fmt.Fprintf(w, "  body: %s... (%d bytes total)\n", previewOf(resp.Body, opaquePreviewBytes), len(resp.Body))
		return
	}
	fmt.Fprintf(w, "  body: %s\n", buf.String())
}

// printSummary renders the closing banner: the stability verdict, then the
// overall PASS/FAIL line.
func printSummary(w io.Writer, report domain.RunReport, runID string) {
	if st := report.Stability; st != nil {
		verdict := "False"
		if st.Stable {
			verdict = "True"
		}
		fmt.Fprintf(w, "SAME_DAY_STABLE = %s\n", verdict)
		if !st.Stable {
			fmt.Fprintf(w, "  first:  %q\n", st.FirstID)
			fmt.Fprintf(w, "  second: %q\n", st.SecondID)
		}
	}

	fails := report.FailedSteps()
	if fails == 0 {
		fmt.Fprintf(w, "PASS (%d steps)\n", len(report.Steps))
	} else {
		fmt.Fprintf(w, "FAIL (%d of %d steps failed)\n", fails, len(report.Steps))
	}

	if runID != "" {
		fmt.Fprintf(w, "report saved: %s\n", runID)
	}
}

func previewOf(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max])
	}
	return string(b)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func countAssertionPassFail(in []domain.AssertionResult) (pass int, fail int) {
	for _, a := range in {
		if a.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}

func countExtractPassFail(in []domain.ExtractResult) (ok int, bad int) {
	for _, e := range in {
		if e.Success {
			ok++
		} else {
			bad++
		}
	}
	return ok, bad
}
