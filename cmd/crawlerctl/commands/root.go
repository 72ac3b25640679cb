// Package commands implements the crawlerctl CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/quietpath/crawlerctl/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "crawlerctl",
	Short: "Politeness-aware crawl session control",
	Long: `crawlerctl drives a crawl session against a configured seed set.

Examples:
  # Start a fresh crawl from a config file
  crawlerctl start --config crawl.yaml

  # Resume a crawl from a prior snapshot
  crawlerctl resume --snapshot crawl.snap

  # Dump the human-readable shape of a saved snapshot
  crawlerctl describe crawl.snap`,
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.crawlerctl.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".crawlerctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CRAWLERCTL")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func initLogging() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
