package main

import (
	"os"

	"github.com/spf13/cobra"

	"ebcore/internal/agent"
	"ebcore/internal/config"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Dump the live symbol tables of a freshly created agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		a, err := agent.New(cfg, agent.Options{Logger: logger})
		if err != nil {
			return err
		}
		defer a.Teardown()

		a.CreateTopGoal()
		a.Syms.DumpSymbols(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}
