package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string
	ltmPath    string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ebcore",
	Short: "ebcore - explanation-based chunking agent core",
	Long: `ebcore runs cognitive agents built around a refcounted symbol
interner and an explanation-based learning pipeline. Rules learned while
resolving impasses are named deterministically and recorded in a queryable
provenance memory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ebcore.yaml", "agent config file")
	rootCmd.PersistentFlags().StringVar(&ltmPath, "ltm", ":memory:", "long-term identifier registry database")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
