package config

// Config represents the complete pivot configuration.
// It can be loaded from .pivot/config.yml with environment variable overrides.
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Chart   ChartConfig   `yaml:"chart" mapstructure:"chart"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
}

// StorageConfig locates the SQLite workspace.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // relative paths resolve against the project root
}

// CacheConfig controls the engine result cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	MaxEntries int  `yaml:"max_entries" mapstructure:"max_entries"`
}

// ChartConfig sets the series color ramp.
type ChartConfig struct {
	BaseColor string  `yaml:"base_color" mapstructure:"base_color"` // #rgb or #rrggbb, used when a collection has no color
	MinAlpha  float64 `yaml:"min_alpha" mapstructure:"min_alpha"`   // alpha of the last series
}

// OutputConfig controls JSON output of the CLI.
type OutputConfig struct {
	Indent bool `yaml:"indent" mapstructure:"indent"`
}

// WatchConfig controls the dataset watcher.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath: ".pivot/pivot.db",
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 256,
		},
		Chart: ChartConfig{
			BaseColor: "#4a90d9",
			MinAlpha:  0.2,
		},
		Output: OutputConfig{
			Indent: true,
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
	}
}

// CacheSize returns the engine cache size, 0 when caching is disabled.
func (c *Config) CacheSize() int {
	if !c.Cache.Enabled {
		return 0
	}
	return c.Cache.MaxEntries
}
