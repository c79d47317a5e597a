package config

import (
	"errors"
	"fmt"
)

// Validate checks the structural validity of a Config. All problems are
// reported at once via errors.Join.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log_level %q", cfg.LogLevel))
	}

	switch cfg.Provider.Backend {
	case "gemini", "anthropic":
	default:
		errs = append(errs, fmt.Errorf("config: unknown provider backend %q (supported: gemini, anthropic)", cfg.Provider.Backend))
	}
	if cfg.Provider.APIKey == "" {
		errs = append(errs, errors.New("config: provider api_key is required"))
	}
	if cfg.Provider.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("config: provider timeout_seconds must be non-negative, got %d", cfg.Provider.TimeoutSeconds))
	}

	if err := cfg.Context.Validate(); err != nil {
		errs = append(errs, err)
	}

	if cfg.Store.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("config: store retention_days must be non-negative, got %d", cfg.Store.RetentionDays))
	}

	return errors.Join(errs...)
}
