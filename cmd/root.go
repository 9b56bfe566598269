package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"checkparser/internal/logger"
)

var version = "2.0.0"

var rootCmd = &cobra.Command{
	Use:   "checkparser",
	Short: "Check Parser - extract structured records from scanned insurance checks",
	Long: `Check Parser reads scanned insurance payment checks (PDF or images),
extracts the check fields with a vision-capable inference service, and
produces a formatted spreadsheet report with a computed total.

Multi-page PDFs are split into one check image per page; image uploads
are treated as a single check each.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Check Parser")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
