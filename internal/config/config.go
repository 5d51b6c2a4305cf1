// Package config loads the venue's runtime configuration, grounded on the
// teacher's viper-based loader (internal/infrastructure/config/config.go):
// a YAML file overlaid with explicit env-var overrides via viper.IsSet.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// HTTPConfig configures the admin/ops HTTP surface (api/).
type HTTPConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// FeeConfig configures the order book's fee schedule.
type FeeConfig struct {
	TradingFeeBps int `yaml:"trading_fee_bps" json:"trading_fee_bps"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// Config is the venue's top-level runtime configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Fee     FeeConfig     `yaml:"fee" json:"fee"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Dev     bool          `yaml:"dev" json:"dev"`
}

// Default returns the configuration used when no config file or env
// overrides are present.
func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{Host: "0.0.0.0", Port: 8080},
		Fee:     FeeConfig{TradingFeeBps: 25},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Dev:     false,
	}
}

// Load reads config.yaml from the working directory, ./config, or
// /etc/sekumarket, overlaying explicit env-var overrides on top of
// Default(). Env vars are the upper-cased keys with "." replaced by "_"
// (HTTP_HOST, HTTP_PORT, FEE_TRADING_FEE_BPS, METRICS_ENABLED,
// METRICS_PATH, DEV) and take precedence over the file. A missing config file is not an error — Default() alone is a
// valid configuration.
func Load() (*Config, error) {
	cfg := Default()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sekumarket")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if viper.IsSet("http.host") {
		cfg.HTTP.Host = viper.GetString("http.host")
	}
	if viper.IsSet("http.port") {
		cfg.HTTP.Port = viper.GetInt("http.port")
	}
	if viper.IsSet("fee.trading_fee_bps") {
		cfg.Fee.TradingFeeBps = viper.GetInt("fee.trading_fee_bps")
	}
	if viper.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = viper.GetBool("metrics.enabled")
	}
	if viper.IsSet("metrics.path") {
		cfg.Metrics.Path = viper.GetString("metrics.path")
	}
	if viper.IsSet("dev") {
		cfg.Dev = viper.GetBool("dev")
	}

	return cfg, nil
}
