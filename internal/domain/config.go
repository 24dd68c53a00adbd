package domain

// Config represents the minimal mindprobe configuration loaded from mindprobe.yaml.
type Config struct {
	Masking  MaskingConfig
	Defaults DefaultsConfig
	Paths    PathsConfig
}

type MaskingConfig struct {
	Enabled bool
}

type DefaultsConfig struct {
	Target string
}

type PathsConfig struct {
	TargetsDir string
	ReportsDir string
}

// DefaultConfig provides sane defaults if mindprobe.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Masking: MaskingConfig{Enabled: true},
		Defaults: DefaultsConfig{
			Target: "local",
		},
		Paths: PathsConfig{
			TargetsDir: "targets",
			ReportsDir: "reports",
		},
	}
}
