package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mydehq/metamatch"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "metamatch %s\n", metamatch.Version())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
