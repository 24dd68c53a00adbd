// Package probedir locates, loads and scaffolds a probe directory: the folder
// holding mindprobe.yaml, target files and saved reports.
package probedir

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
)

const configFileName = "mindprobe.yaml"

// Finder locates a probe directory root by searching for mindprobe.yaml upward.
type Finder struct {
	ConfigFile string // defaults to "mindprobe.yaml"
}

func NewFinder() *Finder {
	return &Finder{ConfigFile: configFileName}
}

var _ ports.ProbeLocator = (*Finder)(nil)

func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "probedir.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{
			Op:   "probedir.findroot",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	// If user passes a file path, use its directory.
	info, statErr := os.Stat(abs)
	if statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	cur := filepath.Clean(abs)
	for {
		cfgPath := filepath.Join(cur, f.ConfigFile)
		if _, err := os.Stat(cfgPath); err == nil {
			return cur, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root.
			return "", &domain.OpError{
				Op:   "probedir.findroot",
				Kind: domain.KindNotFound,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}
