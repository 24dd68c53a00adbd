package probedir

import (
	"os"
	"path/filepath"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads mindprobe.yaml from the probe directory root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, configFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "probedir.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "probedir.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.Mindprobe.Masking.Enabled != nil {
		cfg.Masking.Enabled = *y.Mindprobe.Masking.Enabled
	}
	if y.Mindprobe.Defaults.Target != "" {
		cfg.Defaults.Target = y.Mindprobe.Defaults.Target
	}
	if y.Mindprobe.Paths.TargetsDir != "" {
		cfg.Paths.TargetsDir = y.Mindprobe.Paths.TargetsDir
	}
	if y.Mindprobe.Paths.ReportsDir != "" {
		cfg.Paths.ReportsDir = y.Mindprobe.Paths.ReportsDir
	}

	return cfg, nil
}

type yamlConfig struct {
	Mindprobe struct {
		Masking struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"masking"`

		Defaults struct {
			Target string `yaml:"target"`
		} `yaml:"defaults"`

		Paths struct {
			TargetsDir string `yaml:"targets_dir"`
			ReportsDir string `yaml:"reports_dir"`
		} `yaml:"paths"`
	} `yaml:"mindprobe"`
}
