// Package cli implements the itemd command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itemledger/itemd/internal/config"
)

var (
	configFile string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "itemd",
	Short: "itemd - fixed-supply item registry and settlement engine",
	Long: `itemd maintains a registry of fixed-supply item collections with
per-item holders, transfer grants and operator grants, an offer book with
flat and ramp-down pricing, and allowance-backed atomic settlement against
hosted currencies. It serves queries and operation submission over HTTP
JSON-RPC and real-time notifications over WebSocket.`,
	Version: config.Version,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.Default(), nil
}
