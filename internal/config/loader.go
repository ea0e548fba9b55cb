package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead
// of searching rootDir/.pivot.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PIVOT_*)
// 2. Config file (.pivot/config.yml or .pivot/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".pivot"))
	}

	v.SetEnvPrefix("PIVOT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PIVOT_CACHE_MAX_ENTRIES)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	for key := range defaultValues(Default()) {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !filepath.IsAbs(cfg.Storage.DBPath) {
		cfg.Storage.DBPath = filepath.Join(l.rootDir, cfg.Storage.DBPath)
	}

	return cfg, nil
}

// defaultValues flattens the defaults into viper keys. Every key listed
// here can also be set through a PIVOT_ environment variable.
func defaultValues(d *Config) map[string]any {
	return map[string]any{
		"storage.db_path":   d.Storage.DBPath,
		"cache.enabled":     d.Cache.Enabled,
		"cache.max_entries": d.Cache.MaxEntries,
		"chart.base_color":  d.Chart.BaseColor,
		"chart.min_alpha":   d.Chart.MinAlpha,
		"output.indent":     d.Output.Indent,
		"watch.debounce_ms": d.Watch.DebounceMs,
	}
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaultValues(Default()) {
		v.SetDefault(key, value)
	}
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
