package cli

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/BeyzaCankayaa/mindprobe/internal/infra/logger"
	"github.com/BeyzaCankayaa/mindprobe/internal/infra/probedir"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "mindprobe",
		Short:        "Mindprobe — smoke tests for the Mindio backend",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// .env is optional; envs already set in the shell win.
			_ = godotenv.Load()

			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			wd, _ = filepath.Abs(wd)

			logRoot := wd
			if root, ferr := probedir.NewFinder().FindRoot(wd); ferr == nil && root != "" {
				logRoot = root
			}

			_, _ = logger.Setup(logger.Config{
				Root:  logRoot,
				Debug: debug,
			})
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .mindprobe/logs/mindprobe.log")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(targetsCmd())
	cmd.AddCommand(initCmd())
	cmd.AddCommand(stubCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}
