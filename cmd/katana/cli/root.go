// Package cli implements the katana command-line interface
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katanabench/katana/internal/config"
	"github.com/katanabench/katana/internal/logging"
)

const version = "1.0.0"

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:     "katana",
	Short:   "Screen-driven game benchmark automation",
	Long:    "katana runs declarative benchmark workflows against games by watching the screen and driving keyboard and mouse input.",
	Version: version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to settings INI file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadSettings reads the configured INI file, or returns defaults when no
// file was given
func loadSettings() (*config.Settings, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	settings, err := config.LoadFromINI(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func newLogger(component string) *logging.Logger {
	log := logging.NewLogger(component)
	if debug {
		log.SetMinLevel(logging.LevelDebug)
	}
	return log
}
