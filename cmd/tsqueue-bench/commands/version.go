package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the tsqueue-bench build version, overridable via
// -ldflags "-X .../commands.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tsqueue-bench version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("tsqueue-bench %s\n", Version)
		return nil
	},
}
