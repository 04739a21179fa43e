package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"automsr/internal/ui"
)

const Version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "automsr",
	Short:         "AutoMSR — daily rewards task runner",
	Long:          "AutoMSR drives a browser through the daily rewards tasks of one or more profiles and keeps a local log of points and completions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "automsr.yaml", "path to the YAML configuration")

	rootCmd.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newBoardCmd(),
		newPrizesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
