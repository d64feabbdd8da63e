package cli

import (
	goruntime "runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("novelcheck version %s (%s %s/%s)\n",
			version, goruntime.Version(), goruntime.GOOS, goruntime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
