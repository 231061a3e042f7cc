package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/noshow-cli/internal/config"
	"github.com/KaramelBytes/noshow-cli/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "noshow",
	Short: "Analyze missed medical appointments",
	Long: `noshow cleans a medical appointments table and answers four questions about
patients who miss their appointments: how age and gender relate to no-shows,
which chronic-condition groups miss most, whether SMS reminders help, and which
weekdays see the most appointments and no-shows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.noshow/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	cfg, cfgErr = cfgpkg.Load(cfgFile)
	lc := logging.Config{Level: "info", Format: "text"}
	if cfgErr != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", cfgErr)
	} else {
		lc = logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	}
	if debug {
		lc.Level = "debug"
	}
	if logFormat != "" {
		lc.Format = logFormat
	}
	logging.Init(lc)
}

// requireConfig returns the loaded configuration or the reason it is missing.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil {
		return nil, fmt.Errorf("load config: %w", cfgErr)
	}
	return nil, errors.New("configuration not loaded")
}
