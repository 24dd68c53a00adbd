// Package targetfile loads target YAML files: per-deployment vars (base_url,
// credentials, webhook_url) with an optional secrets.local.yaml overlay kept
// out of version control.
package targetfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	rootDir     string
	targetsDir  string
	secretsFile string
}

type Option func(*Loader)

func WithTargetsDir(dir string) Option {
	return func(l *Loader) { l.targetsDir = dir }
}

func WithSecretsFile(name string) Option {
	return func(l *Loader) { l.secretsFile = name }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:     root,
		targetsDir:  "targets",
		secretsFile: "secrets.local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	_ ports.TargetLoader  = (*Loader)(nil)
	_ ports.TargetCatalog = (*Loader)(nil)
)

// LoadTarget accepts either a target name (e.g., "local") or a full path to a YAML file.
func (l *Loader) LoadTarget(nameOrPath string) (domain.Target, error) {
	var targetPath string
	var targetName string

	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.Contains(nameOrPath, string(filepath.Separator)) {
		targetPath = filepath.Clean(nameOrPath)
		targetName = strings.TrimSuffix(filepath.Base(targetPath), filepath.Ext(targetPath))
	} else {
		targetName = nameOrPath
		targetPath = filepath.Join(l.rootDir, l.targetsDir, targetName+".yaml")
	}

	base, err := readVars(targetPath)
	if err != nil {
		return domain.Target{}, err
	}

	// Secrets are optional; they override base vars.
	secretsPath := filepath.Join(filepath.Dir(targetPath), l.secretsFile)
	secrets, secErr := readVarsOptional(secretsPath)
	if secErr != nil {
		return domain.Target{}, secErr
	}

	return domain.Target{
		Name: targetName,
		Vars: domain.Merge(base, secrets),
	}, nil
}

// ListTargets returns the target files found under the probe directory.
func (l *Loader) ListTargets(root string) ([]domain.TargetRef, error) {
	dir := filepath.Join(root, l.targetsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.TargetRef{}, nil
		}
		return nil, &domain.OpError{
			Op:   "targetfile.list",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	refs := make([]domain.TargetRef, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if name == l.secretsFile {
			continue
		}
		refs = append(refs, domain.TargetRef{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

type yamlTarget struct {
	Vars map[string]string `yaml:"vars"`
}

func readVars(path string) (domain.Vars, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "targetfile.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlTarget
	if err := yaml.Unmarshal(b, &y); err != nil {
		return nil, &domain.OpError{
			Op:   "targetfile.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if y.Vars == nil {
		y.Vars = map[string]string{}
	}

	return domain.Vars(y.Vars), nil
}

func readVarsOptional(path string) (domain.Vars, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Vars{}, nil
		}
		return nil, &domain.OpError{
			Op:   "targetfile.secrets",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	v, err := readVars(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	return v, nil
}
