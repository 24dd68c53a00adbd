// Package steprunner executes a single smoke step over HTTP: it resolves
// {{var}} placeholders, performs the request, and captures a bounded snapshot
// of the response with a classified transport error when one occurs.
package steprunner

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/httpclient"
	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
)

const defaultMaxBodyBytes = 256 * 1024 // 256KB

type Runner struct {
	client       *http.Client
	maxBodyBytes int64
	resolver     *domain.VarResolver
}

type Option func(*Runner)

func WithMaxBodyBytes(n int64) Option {
	return func(r *Runner) { r.maxBodyBytes = n }
}

func WithResolver(vr *domain.VarResolver) Option {
	return func(r *Runner) { r.resolver = vr }
}

func New(client *http.Client, opts ...Option) *Runner {
	r := &Runner{
		client:       client,
		maxBodyBytes: defaultMaxBodyBytes,
		resolver:     domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.StepRunner = (*Runner)(nil)

func (r *Runner) Run(ctx context.Context, step domain.StepSpec, vars domain.Vars) (domain.StepResult, error) {
	rt, err := r.resolver.NewRuntime(vars)
	if err != nil {
		return domain.StepResult{}, err
	}

	resolved, err := rt.ResolveStep(step)
	if err != nil {
		// Config-level issue: missing var, invalid placeholder, etc.
		return domain.StepResult{}, err
	}

	if resolved.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(resolved.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	result := domain.StepResult{
		Name:       resolved.Name,
		Method:     resolved.Method,
		URL:        resolved.URL,
		Parse:      resolved.Parse,
		Extracted:  domain.Vars{},
		Extracts:   []domain.ExtractResult{},
		Assertions: []domain.AssertionResult{},
		Response: domain.ResponseSnapshot{
			Headers: map[string][]string{},
		},
	}

	httpReq, err := httpclient.BuildRequest(ctx, resolved)
	if err != nil {
		return domain.StepResult{}, err
	}

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	lat := time.Since(start)
	result.LatencyMS = lat.Milliseconds()

	if err != nil {
		result.Error = domain.NewRunError(err)
		return result, nil
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Response.Headers = cloneHeaders(resp.Header)

	body, truncated, readErr := readBounded(resp.Body, r.maxBodyBytes)
	if readErr != nil {
		result.Error = domain.NewRunError(readErr)
		return result, nil
	}

	result.Response.Body = body
	result.Response.Truncated = truncated
	return result, nil
}

func readBounded(r io.Reader, maxBytes int64) ([]byte, bool, error) {
	lim := io.LimitReader(r, maxBytes+1)
	b, err := io.ReadAll(lim)
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > maxBytes {
		return b[:maxBytes], true, nil
	}
	return b, false, nil
}

func cloneHeaders(h http.Header) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, v := range h {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}
