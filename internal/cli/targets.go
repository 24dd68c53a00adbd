package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func targetsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "targets",
		Short: "Manage targets in a probe directory",
	}

	c.AddCommand(targetsListCmd())
	return c
}

func targetsListCmd() *cobra.Command {
	var probeDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List targets",
		RunE: func(_ *cobra.Command, _ []string) error {
			pc, err := loadProbeDir(probeDir)
			if err != nil {
				return err
			}

			refs, err := pc.catalog.ListTargets(pc.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no targets found)")
				return nil
			}

			fmt.Printf("Probe dir: %s\n\n", pc.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(pc.root, r.Path)
				marker := " "
				if r.Name == pc.cfg.Defaults.Target {
					marker = "*"
				}
				fmt.Printf("%s %s  (%s)\n", marker, r.Name, rel)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&probeDir, "probe-dir", "", "Probe directory root (optional; autodetected if omitted)")
	return cmd
}
