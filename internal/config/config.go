// Package config loads application settings from environment variables,
// an optional .env file, and an optional alswaife.yaml config file.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// DatabasePath is the sqlite file holding invoices, the ledger and the
	// invoice counter. A single file shared by every command.
	DatabasePath string `mapstructure:"database_path"`

	// CatalogPath is the JSON pricing catalog.
	CatalogPath string `mapstructure:"catalog_path"`

	// WatchCatalog enables reloading the catalog when the file changes.
	WatchCatalog bool `mapstructure:"watch_catalog"`

	// CurrencyScale is the number of minor-unit digits used when rounding
	// line totals.
	CurrencyScale int32 `mapstructure:"currency_scale"`

	// ExportDir receives generated invoice and statement workbooks.
	ExportDir string `mapstructure:"export_dir"`

	// NodeID seeds the snowflake ID generator.
	NodeID int64 `mapstructure:"node_id"`

	LogLevel string `mapstructure:"log_level"`
}

func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ALSWAIFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_path", "alswaife.db")
	v.SetDefault("catalog_path", "products.json")
	v.SetDefault("watch_catalog", true)
	v.SetDefault("currency_scale", 2)
	v.SetDefault("export_dir", "exports")
	v.SetDefault("node_id", 1)
	v.SetDefault("log_level", "info")

	v.SetConfigName("alswaife")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.CurrencyScale < 0 {
		return nil, fmt.Errorf("currency_scale must be >= 0, got %d", cfg.CurrencyScale)
	}
	return &cfg, nil
}
