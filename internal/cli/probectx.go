package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/httpclient"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/probedir"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/runstore"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/steprunner"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/targetfile"
	"github.com/BeyzaCankayaa/mindprobe/internal/ports"
)

// probeCtx bundles everything a command needs from a resolved probe directory.
type probeCtx struct {
	root string
	cfg  domain.Config

	targets ports.TargetLoader
	catalog ports.TargetCatalog

	runner ports.StepRunner
	store  ports.ArtifactStore
}

func loadProbeDir(probeDirFlag string) (*probeCtx, error) {
	root, err := resolveProbeRoot(probeDirFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := probedir.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	loader := targetfile.NewLoader(
		root,
		targetfile.WithTargetsDir(cfg.Paths.TargetsDir),
	)

	client := httpclient.New(httpclient.DefaultConfig())
	runner := steprunner.New(client)

	store := runstore.NewJSONStore(root, cfg, runstore.WithIndex(true))

	return &probeCtx{
		root:    root,
		cfg:     cfg,
		targets: loader,
		catalog: loader,
		runner:  runner,
		store:   store,
	}, nil
}

func resolveProbeRoot(probeDirFlag string) (string, error) {
	p := strings.TrimSpace(probeDirFlag)
	if p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("invalid probe directory path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := probedir.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("probe directory not found from %q (tip: run `mindprobe init`): %w", wd, err)
	}
	return root, nil
}

// resolveTargetArg maps a name ("local"), a file name ("local.yaml") or a path
// to something the target loader can open.
func resolveTargetArg(pc *probeCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return pc.cfg.Defaults.Target, nil
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(pc.root, p)
		}
		return filepath.Clean(p), nil
	}

	if hasYAMLExt(in) {
		targetsDir := filepath.Join(pc.root, pc.cfg.Paths.TargetsDir)
		p := filepath.Join(targetsDir, in)
		if fileExists(p) {
			return p, nil
		}
		return p, nil
	}

	// Plain name; the loader resolves it inside the targets dir.
	return in, nil
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
