package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BeyzaCankayaa/mindprobe/internal/buildinfo"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(buildinfo.String())
		},
	}
}
