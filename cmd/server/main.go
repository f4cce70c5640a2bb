package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "irrigation",
	Short: "Smart irrigation dashboard",
	Long: `Smart irrigation dashboard.

Loads a sprinkler classifier once at startup and serves a browser dashboard
where 20 sensor readings are adjusted with sliders and the model predicts
the ON/OFF state of 20 sprinklers.

Available subcommands:
  serve        - Start the dashboard HTTP server
  sample-model - Write a demo model artifact`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sampleModelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
