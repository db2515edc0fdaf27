// Package main provides the atipctl CLI: the dashboard's aggregators run
// against the ATIP API from a terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput switches from JSON to a readable listing.
	humanOutput bool
	baseURL     string
	logLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "atipctl",
	Short: "Query the ATIP researcher API",
	Long: `atipctl runs the dashboard's leaderboard, profile, search and API debug
views against the ATIP API and prints them.

Every command writes JSON by default; pass --human for a readable listing.
Settings come from the same config file and ATIP_* environment variables as
the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "ATIP API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")
	rootCmd.Version = Version
}
