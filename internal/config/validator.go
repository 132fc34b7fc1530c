package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/htmlindex"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Every invalid section is reported; the result is nil or a *errors.MultiError
// of *errors.ConfigError.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setSmartDefaults(cfg)

	var errs []error
	if err := v.validateSearchConfig(&cfg.Search); err != nil {
		errs = append(errs, lgerrors.NewConfigError("search", cfg.Search.Encoding, err))
	}

	if err := v.validateWalkConfig(&cfg.Walk); err != nil {
		errs = append(errs, lgerrors.NewConfigError("walk", "", err))
	}

	if err := v.validateOutputConfig(&cfg.Output); err != nil {
		errs = append(errs, lgerrors.NewConfigError("output.color", cfg.Output.Color, err).
			WithSuggestion(suggest(cfg.Output.Color, colorModes)))
	}

	if err := v.validateLogConfig(&cfg.Log); err != nil {
		errs = append(errs, lgerrors.NewConfigError("log", cfg.Log.File, err))
	}

	return lgerrors.NewMultiError(errs).ErrOrNil()
}

var colorModes = []string{"auto", "always", "never"}

// validateSearchConfig validates search configuration
func (v *Validator) validateSearchConfig(search *Search) error {
	if !strings.EqualFold(search.Encoding, DefaultEncoding) {
		if _, err := htmlindex.Get(search.Encoding); err != nil {
			return fmt.Errorf("unsupported encoding %q", search.Encoding)
		}
	}

	if search.MaxLineBytes < 0 {
		return fmt.Errorf("MaxLineBytes cannot be negative, got %d", search.MaxLineBytes)
	}

	return nil
}

// validateWalkConfig validates walk configuration
func (v *Validator) validateWalkConfig(walk *Walk) error {
	if walk.BatchSize < 0 {
		return fmt.Errorf("BatchSize cannot be negative, got %d", walk.BatchSize)
	}

	for _, pattern := range walk.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	for _, pattern := range walk.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return nil
}

// validateOutputConfig validates output configuration
func (v *Validator) validateOutputConfig(output *Output) error {
	for _, mode := range colorModes {
		if output.Color == mode {
			return nil
		}
	}
	return fmt.Errorf("color must be one of %s", strings.Join(colorModes, ", "))
}

// validateLogConfig validates debug log configuration
func (v *Validator) validateLogConfig(log *Log) error {
	if log.MaxSizeMB < 0 || log.MaxBackups < 0 || log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits cannot be negative")
	}
	return nil
}

// setSmartDefaults fills zero values left by partial config files
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Search.Encoding == "" {
		cfg.Search.Encoding = DefaultEncoding
	}

	if cfg.Search.MaxLineBytes == 0 {
		cfg.Search.MaxLineBytes = DefaultMaxLineBytes
	}

	if cfg.Walk.BatchSize == 0 {
		cfg.Walk.BatchSize = DefaultBatchSize
	}

	if cfg.Output.Color == "" {
		cfg.Output.Color = DefaultColorMode
	}
	cfg.Output.Color = strings.ToLower(cfg.Output.Color)

	if cfg.Log.File != "" && cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
