// tradeadvisor serves simulated day-trade recommendations, a demo portfolio,
// simulated order execution and a watchlist.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version  = "0.1.0"
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tradeadvisor",
		Short: "Trading recommendation backend",
		Long: `tradeadvisor generates day-trade ideas from live or fallback quotes,
keeps a demo portfolio and simulates order execution against it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tradeadvisor version %s\n", version)
		},
	}
}
