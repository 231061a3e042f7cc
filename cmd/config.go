package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/noshow-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set noshow configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "chart_format: %s\n", cfg.ChartFormat)
		fmt.Fprintf(out, "chart_width_in: %.2f\n", cfg.ChartWidthIn)
		fmt.Fprintf(out, "chart_height_in: %.2f\n", cfg.ChartHeightIn)
		fmt.Fprintf(out, "hist_bins: %d\n", cfg.HistBins)
		fmt.Fprintf(out, "write_xlsx: %t\n", cfg.WriteXLSX)
		fmt.Fprintf(out, "date_layout: %s\n", cfg.DateLayout)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", cfg.SheetIndex)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil && cfgFile != "" && errors.Is(err, os.ErrNotExist) {
				// set creates the named file
				c, err = cfgpkg.Defaults()
			}
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "output_dir":
			next.OutputDir = val
		case "chart_format":
			next.ChartFormat = strings.ToLower(val)
		case "chart_width_in", "chart_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			if key == "chart_width_in" {
				next.ChartWidthIn = f
			} else {
				next.ChartHeightIn = f
			}
		case "hist_bins":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for hist_bins: %w", err)
			}
			next.HistBins = i
		case "write_xlsx":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for write_xlsx: %w", err)
			}
			next.WriteXLSX = b
		case "date_layout":
			next.DateLayout = val
		case "sheet_name":
			next.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid sheet_index: %v (must be >= 1)", val)
			}
			next.SheetIndex = i
		case "log_level":
			next.LogLevel = strings.ToLower(val)
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				next.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
