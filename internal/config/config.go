package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Output
	OutputDir     string  `mapstructure:"output_dir" yaml:"output_dir"`
	ChartFormat   string  `mapstructure:"chart_format" yaml:"chart_format"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`
	HistBins      int     `mapstructure:"hist_bins" yaml:"hist_bins"`
	WriteXLSX     bool    `mapstructure:"write_xlsx" yaml:"write_xlsx"`

	// Input
	DateLayout string `mapstructure:"date_layout" yaml:"date_layout"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultDateLayout matches the ScheduledDay/AppointmentDay columns of the source dataset.
const DefaultDateLayout = "2006-01-02 15:04:05"

// Dir returns ~/.noshow, the default home of config.yaml.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".noshow"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.noshow/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a local .env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// Defaults returns env and built-in settings without reading any config file.
func Defaults() (*Global, error) {
	return load("", false)
}

func load(cfgFile string, readFile bool) (*Global, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NOSHOW")
	v.AutomaticEnv()

	v.SetDefault("output_dir", "noshow-report")
	v.SetDefault("chart_format", "png")
	v.SetDefault("chart_width_in", 8.0)
	v.SetDefault("chart_height_in", 5.0)
	v.SetDefault("hist_bins", 15)
	v.SetDefault("write_xlsx", true)
	v.SetDefault("date_layout", DefaultDateLayout)
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	switch {
	case !readFile:
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	default:
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// The default file is optional; a file named with --config is not.
	if readFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if cfgFile != "" || !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the renderer and loader cannot work with.
func (c *Global) Validate() error {
	switch c.ChartFormat {
	case "png", "svg", "pdf", "jpg", "tiff":
	default:
		return fmt.Errorf("invalid chart_format: %s (use png, svg, pdf, jpg or tiff)", c.ChartFormat)
	}
	if c.ChartWidthIn <= 0 || c.ChartHeightIn <= 0 {
		return fmt.Errorf("invalid chart size: %gx%g in", c.ChartWidthIn, c.ChartHeightIn)
	}
	if c.HistBins <= 0 {
		return fmt.Errorf("invalid hist_bins: %d", c.HistBins)
	}
	if c.DateLayout == "" {
		return fmt.Errorf("date_layout must not be empty")
	}
	return nil
}
