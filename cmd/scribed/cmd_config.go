package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scribed/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage scribed configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("refusing to overwrite existing config at %s", cfgPath)
		}
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "input_dir:     %s\n", cfg.Paths.InputDir)
		fmt.Fprintf(cmd.OutOrStdout(), "output_dir:    %s\n", cfg.Paths.OutputDir)
		fmt.Fprintf(cmd.OutOrStdout(), "ledger_file:   %s\n", cfg.Paths.LedgerFile)
		fmt.Fprintf(cmd.OutOrStdout(), "history_db:    %s\n", cfg.Paths.HistoryDB)
		fmt.Fprintf(cmd.OutOrStdout(), "model:         %s\n", cfg.LLM.Model)
		fmt.Fprintf(cmd.OutOrStdout(), "poll_interval: %s\n", cfg.GetPollInterval())
		fmt.Fprintf(cmd.OutOrStdout(), "workers:       %d\n", cfg.Worker.Workers)
		fmt.Fprintf(cmd.OutOrStdout(), "api_key_set:   %t\n", cfg.LLM.APIKey != "")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
