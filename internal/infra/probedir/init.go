package probedir

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
)

type Initializer struct{}

func NewInitializer() *Initializer {
	return &Initializer{}
}

var _ ports.ProbeInitializer = (*Initializer)(nil)

const starterConfig = `mindprobe:
  masking:
    enabled: true
  defaults:
    target: local
  paths:
    targets_dir: targets
    reports_dir: reports
`

const starterTarget = `vars:
  base_url: http://127.0.0.1:8000
  email: smoke@mindio.app
  password: smoke-test-1
  webhook_url: http://127.0.0.1:5678/webhook/mindio-chat
`

const starterSecrets = `# Overrides merged on top of every target in this directory.
# Keep real credentials here; this file is gitignored.
vars: {}
`

// Init scaffolds a probe directory: config, a starter target, report dirs
// and .gitignore entries. Existing files are kept unless force is set.
func (i *Initializer) Init(root string, force bool) error {
	root = filepath.Clean(root)

	dirs := []string{
		filepath.Join(root, "targets"),
		filepath.Join(root, "reports"),
		filepath.Join(root, ".mindprobe", "logs"),
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}

	if err := ensureGitignore(root); err != nil {
		return err
	}

	files := []struct {
		path    string
		content string
		mode    os.FileMode
	}{
		{filepath.Join(root, configFileName), starterConfig, 0o644},
		{filepath.Join(root, "targets", "local.yaml"), starterTarget, 0o644},
		{filepath.Join(root, "targets", "secrets.local.yaml"), starterSecrets, 0o600},
	}

	for _, f := range files {
		if !force {
			if _, statErr := os.Stat(f.path); statErr == nil {
				continue
			}
		}
		if err := os.WriteFile(f.path, []byte(f.content), f.mode); err != nil {
			return err
		}
	}

	return nil
}

func ensureGitignore(root string) error {
	const header = "# mindprobe"
	entries := []string{
		"reports/",
		".mindprobe/",
		"targets/secrets.local.yaml",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		present[trimmed] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.Grow(len(existing) + 64)

	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
