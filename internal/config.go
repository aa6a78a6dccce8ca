package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config carries the tool's settings, layered from defaults, the config
// file, and CURSOR_ATLAS_* environment variables.
type Config struct {
	StoragePath  string `mapstructure:"storage_path"`
	CacheDir     string `mapstructure:"cache_dir"`
	ExportFormat string `mapstructure:"export_format"`
	ExportDir    string `mapstructure:"export_dir"`
}

// LoadConfig reads configuration from cfgFile, or from
// $HOME/.cursor-atlas.yaml when cfgFile is empty. A missing config file is
// fine; defaults apply.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	v.SetDefault("storage_path", "")
	v.SetDefault("cache_dir", filepath.Join(home, ".cursor-atlas", "cache"))
	v.SetDefault("export_format", "md")
	v.SetDefault("export_dir", "./exports")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".cursor-atlas")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("CURSOR_ATLAS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
