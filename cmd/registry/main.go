package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "registry",
		Short:        "Solana DEX pool registry",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().StringSlice("nodes", nil, "rpc node urls (comma-separated)")
	root.PersistentFlags().Bool("detect-nodes", false, "ping the nodes and use the fastest one")
	root.PersistentFlags().String("log-path", "./logs/", "log directory, empty logs to stderr only")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Load the pools and serve the inspection api",
		RunE:  runRegistry,
	}

	runCmd.Flags().Int("workers", 8, "decode workers")
	runCmd.Flags().StringSlice("protocols", nil, "protocols scanned by program (comma-separated)")
	runCmd.Flags().StringSlice("pool-addresses", nil, "extra pool addresses to load (comma-separated)")
	runCmd.Flags().StringSlice("curve-mints", nil, "mints whose pumpfun curves are loaded (comma-separated)")
	runCmd.Flags().String("listen", ":8080", "api listen address")
	runCmd.Flags().Duration("state-interval", 2*time.Second, "slot and blockhash poll interval")
	runCmd.Flags().Duration("snapshot-interval", time.Minute, "price snapshot interval")
	runCmd.Flags().String("db-url", "", "mysql host:port, empty disables snapshots")
	runCmd.Flags().Bool("refresh-on-load", true, "refresh every pool from the network after loading")

	root.AddCommand(runCmd)

	poolCmd := &cobra.Command{
		Use:   "pool <address>",
		Short: "Load, refresh and print one pool",
		Args:  cobra.ExactArgs(1),
		RunE:  runPool,
	}

	root.AddCommand(poolCmd)

	legitCmd := &cobra.Command{
		Use:   "legit <mint>",
		Short: "Check whether a token was minted by a known launchpad",
		Args:  cobra.ExactArgs(1),
		RunE:  runLegit,
	}

	root.AddCommand(legitCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
