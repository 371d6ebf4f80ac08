// Package config loads and validates application configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultTickers is the set processed when no positional arguments are given.
var DefaultTickers = []string{"AAPL", "META", "GOOGL", "AMZN", "NFLX", "GS"}

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Edgar   EdgarConfig   `mapstructure:"edgar"`
	Render  RenderConfig  `mapstructure:"render"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EdgarConfig governs the SEC EDGAR client.
type EdgarConfig struct {
	// UserAgent must identify the tool and a contact address; the SEC
	// rejects anonymous clients.
	UserAgent       string        `mapstructure:"user_agent"`
	RequestInterval time.Duration `mapstructure:"request_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ImageTimeout    time.Duration `mapstructure:"image_timeout"`
}

// RenderConfig configures the headless Chrome PDF renderer.
type RenderConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	QuietWindow time.Duration `mapstructure:"quiet_window"`
	NoSandbox   bool          `mapstructure:"no_sandbox"`
}

// OutputConfig sets where generated PDFs land.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TENK2PDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("edgar.user_agent", "tenk2pdf/0.1 (contact@edgarkit.dev)")
	// SEC fair-access policy allows at most 10 requests per second.
	v.SetDefault("edgar.request_interval", "100ms")
	v.SetDefault("edgar.request_timeout", "30s")
	v.SetDefault("edgar.image_timeout", "10s")
	v.SetDefault("render.timeout", "120s")
	v.SetDefault("render.quiet_window", "500ms")
	v.SetDefault("render.no_sandbox", false)
	v.SetDefault("output.dir", "output")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Edgar.UserAgent == "" {
		return fmt.Errorf("edgar.user_agent must be set")
	}
	if c.Edgar.RequestInterval < 0 {
		return fmt.Errorf("edgar.request_interval must be >= 0")
	}
	if c.Edgar.RequestTimeout <= 0 {
		return fmt.Errorf("edgar.request_timeout must be > 0")
	}
	if c.Edgar.ImageTimeout <= 0 {
		return fmt.Errorf("edgar.image_timeout must be > 0")
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("render.timeout must be > 0")
	}
	if c.Render.QuietWindow <= 0 {
		return fmt.Errorf("render.quiet_window must be > 0")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	return nil
}
