package ports

import "github.com/BeyzaCankayaa/mindprobe/internal/domain"

// TargetLoader loads target settings from a source (e.g., filesystem).
type TargetLoader interface {
	LoadTarget(nameOrPath string) (domain.Target, error)
}

// TargetCatalog lists targets available in a probe directory.
type TargetCatalog interface {
	ListTargets(root string) ([]domain.TargetRef, error)
}
