package ports

import "github.com/BeyzaCankayaa/mindprobe/internal/domain"

// ArtifactStore persists run reports for later inspection.
type ArtifactStore interface {
	SaveReport(report domain.RunReport) (id string, err error)
}
