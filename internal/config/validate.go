package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/project-pivot/internal/present"
)

var (
	// ErrEmptyDBPath indicates a missing workspace database path
	ErrEmptyDBPath = errors.New("empty workspace db path")

	// ErrInvalidCacheSize indicates an unusable result cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidColor indicates a chart color that is not #rgb or #rrggbb
	ErrInvalidColor = errors.New("invalid chart color")

	// ErrInvalidAlpha indicates a chart alpha outside [0, 1]
	ErrInvalidAlpha = errors.New("invalid chart alpha")

	// ErrInvalidDebounce indicates a negative watcher debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, fmt.Errorf("%w: storage.db_path is required", ErrEmptyDBPath))
	}

	// Zero entries is only valid when the cache is off
	if cfg.Cache.MaxEntries < 0 || (cfg.Cache.Enabled && cfg.Cache.MaxEntries == 0) {
		errs = append(errs, fmt.Errorf("%w: max_entries must be positive when the cache is enabled, got %d", ErrInvalidCacheSize, cfg.Cache.MaxEntries))
	}

	if err := validateChart(&cfg.Chart); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateChart(cfg *ChartConfig) error {
	var errs []error

	if _, _, _, ok := present.ParseHexColor(cfg.BaseColor); !ok {
		errs = append(errs, fmt.Errorf("%w: base_color must be #rgb or #rrggbb, got '%s'", ErrInvalidColor, cfg.BaseColor))
	}

	if cfg.MinAlpha < 0 || cfg.MinAlpha > 1 {
		errs = append(errs, fmt.Errorf("%w: min_alpha must be between 0 and 1, got %.2f", ErrInvalidAlpha, cfg.MinAlpha))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
