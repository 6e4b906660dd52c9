package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir        string        `mapstructure:"data_dir"`
	DBPath         string        `mapstructure:"db_path"`
	RecapDir       string        `mapstructure:"recap_dir"`
	StructuresPath string        `mapstructure:"structures_path"`
	Session        SessionConfig `mapstructure:"session"`
	Log            LogConfig     `mapstructure:"log"`
}

// SessionConfig holds the read-only settings injected at session setup.
type SessionConfig struct {
	SeatsPerTable        int               `mapstructure:"seats_per_table"`
	DefaultStartingChips int64             `mapstructure:"default_starting_chips"`
	DefaultPayoutPercent float64           `mapstructure:"default_payout_percent"`
	DefaultGameType      string            `mapstructure:"default_game_type"`
	DefaultStakes        string            `mapstructure:"default_stakes"`
	CustomGameTypes      map[string]string `mapstructure:"custom_game_types"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// Default returns the built-in configuration rooted at dataDir.
func Default(dataDir string) Config {
	return Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, ".pokerlog", "pokerlog.db"),
		RecapDir:       filepath.Join(dataDir, "recaps"),
		StructuresPath: filepath.Join(dataDir, ".pokerlog", "structures.yaml"),
		Session: SessionConfig{
			SeatsPerTable:        9,
			DefaultStartingChips: 20000,
			DefaultPayoutPercent: 15,
			DefaultGameType:      "NLH",
			DefaultStakes:        "1/2",
			CustomGameTypes:      map[string]string{},
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads an optional YAML file and POKERLOG_* environment overrides on top of Default.
// An empty path skips the file.
func Load(dataDir, path string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	def := Default(dataDir)

	v := viper.New()
	v.SetEnvPrefix("POKERLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("recap_dir", def.RecapDir)
	v.SetDefault("structures_path", def.StructuresPath)
	v.SetDefault("session.seats_per_table", def.Session.SeatsPerTable)
	v.SetDefault("session.default_starting_chips", def.Session.DefaultStartingChips)
	v.SetDefault("session.default_payout_percent", def.Session.DefaultPayoutPercent)
	v.SetDefault("session.default_game_type", def.Session.DefaultGameType)
	v.SetDefault("session.default_stakes", def.Session.DefaultStakes)
	v.SetDefault("session.custom_game_types", def.Session.CustomGameTypes)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.encoding", def.Log.Encoding)
	v.SetDefault("log.development", def.Log.Development)

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Session.CustomGameTypes == nil {
		cfg.Session.CustomGameTypes = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, fmt.Errorf("data dir is required"))
	}
	if c.Session.SeatsPerTable < 2 {
		errs = append(errs, fmt.Errorf("seats per table must be at least 2, got %d", c.Session.SeatsPerTable))
	}
	if c.Session.DefaultPayoutPercent <= 0 || c.Session.DefaultPayoutPercent > 100 {
		errs = append(errs, fmt.Errorf("default payout percent must be in (0,100], got %v", c.Session.DefaultPayoutPercent))
	}
	if c.Session.DefaultStartingChips <= 0 {
		errs = append(errs, fmt.Errorf("default starting chips must be positive"))
	}
	return errors.Join(errs...)
}
