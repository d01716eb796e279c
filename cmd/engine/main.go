package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "jobboard engine - remote job ingestion and API",
	Long: `Ingests remote job postings from RemoteOK, WeWorkRemotely and Remote.co,
normalizes them and stores each posting once.

Examples:
  engine serve                      # HTTP API + daily ingestion
  engine ingest                     # one ingestion run, prints the summary
  engine serve --data-dir /var/lib/jobboard`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default <data-dir>/config.yml, created if missing)")
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (env JOBBOARD_DATA_DIR, default .)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
