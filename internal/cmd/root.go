// Package cmd defines the capstan command-line interface.
package cmd

import (
	"strings"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "capstan",
	Short: "Ticket-to-pull-request automation pipeline",
	Long: `Capstan turns a ticket into committed, review-ready code: it generates an
implementation plan through a reasoning delegate, executes the plan step by
step against the working tree, optionally cleans the result, pushes the
branch with upstream tracking, and raises a pull request with the
repository's template.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/capstan/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/capstan")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CAPSTAN")
	// Replace dots with underscores for nested keys in env vars
	// e.g., CAPSTAN_EXECUTION_ABORT_POLICY for execution.abort_policy
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
