package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BeyzaCankayaa/mindprobe/internal/infra/probedir"
)

func initCmd() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a probe directory (config, targets, reports)",
		RunE: func(_ *cobra.Command, _ []string) error {
			root := strings.TrimSpace(path)
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				root = wd
			}
			root, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}

			if err := probedir.NewInitializer().Init(root, force); err != nil {
				return err
			}

			fmt.Printf("Probe directory ready at %s\n", root)
			fmt.Println("Edit targets/local.yaml (and targets/secrets.local.yaml), then run `mindprobe run`.")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Directory to initialize (default: current directory)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing scaffold files")
	return cmd
}
