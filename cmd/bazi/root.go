// bazi is the command-line entry to the chart engine: compute a full
// analysis, project year cycles, or run the HTTP service.
//
// Usage:
//
//	bazi chart --date 1990-01-01 --time 12:00 --gender male [-o out.json]
//	bazi annual --date 1990-01-01 --gender male --from 2026 --years 10
//	bazi serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "bazi",
	Short:         "Four-pillar chart computation and analysis",
	Long:          "Bazi computes four-pillar charts with element, ten-god, pattern,\nspirit-marker, cycle and annual analysis, plus optional LLM reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(annualCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
