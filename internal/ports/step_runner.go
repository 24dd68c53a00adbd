package ports

import (
	"context"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
)

// StepRunner executes a single smoke step with a resolved variable set.
type StepRunner interface {
	Run(ctx context.Context, step domain.StepSpec, vars domain.Vars) (domain.StepResult, error)
}
