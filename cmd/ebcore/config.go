package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ebcore/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the agent config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		learning := "off"
		if cfg.Learning.Enabled {
			learning = "on"
		}
		fmt.Printf("agent: %s\nlearning: %s\n", cfg.Agent.Name, learning)
		fmt.Printf("naming style: %s\nmax chunks: %d\nmax dupes: %d\n",
			cfg.Learning.NamingStyle, cfg.Learning.MaxChunks, cfg.Learning.MaxDupes)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
