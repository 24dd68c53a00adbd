package watch

import "github.com/BeyzaCankayaa/mindprobe/internal/domain"

// StepMsg reports one finished step to the view.
type StepMsg struct {
	Result domain.StepResult
	Index  int
	Total  int
}

// DoneMsg closes the run: the final report plus the artifact id (if saved)
// and the fatal error (if any).
type DoneMsg struct {
	Report domain.RunReport
	ID     string
	Err    error
}
