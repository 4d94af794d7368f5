package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reelfeed",
		Short: "Personalized movie feed: rank catalog items by recency and genre preferences",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(feedCmd())
	root.AddCommand(importCmd())

	return root
}

func serveCmd() *cobra.Command {
	var (
		port     int
		seedPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, seedPath)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	cmd.Flags().StringVar(&seedPath, "seed", "", "seed file to load before serving")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with import scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Bulk-load movies, preferences, and related users from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(args[0])
		},
	}
}

func feedCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "feed <userID>",
		Short: "Show the ranked feed for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(args[0], jsonOutput, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "max items to show (default: from config)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Run a one-shot catalog import from the configured feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport()
		},
	}
}
