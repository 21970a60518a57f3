package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/viathefalcon/waveson-passwords/internal/bitops"
	"github.com/viathefalcon/waveson-passwords/internal/entropy"
	"github.com/viathefalcon/waveson-passwords/internal/generator"
)

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is lets errors.Is match ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ValidateConfig validates c and returns an error only if there are
// non-warning problems.
func ValidateConfig(c *Config) error {
	errs := CheckConfig(c)
	if errs.HasErrors() {
		return errs.Errors()
	}
	return nil
}

// CheckConfig returns every problem with c, warnings included.
func CheckConfig(c *Config) ValidationErrors {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs ValidationErrors
	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}
	errs = append(errs, validateGenerator(&c.Generator)...)
	errs = append(errs, validateHardware(&c.Hardware)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	return errs
}

func validateGenerator(g *GeneratorConfig) ValidationErrors {
	var errs ValidationErrors

	if g.Length < 1 || g.Length > generator.MaxAlphabet {
		errs = append(errs, *RangeError("generator.length", 1, generator.MaxAlphabet))
	}

	size := utf8.RuneCountInString(g.Alphabet)
	switch {
	case size == 0:
		errs = append(errs, ValidationError{
			Field:   "generator.alphabet",
			Message: "alphabet is empty, passwords will be empty",
		})
	case size > generator.MaxAlphabet:
		errs = append(errs, ValidationError{
			Field:   "generator.alphabet.size",
			Message: fmt.Sprintf("alphabet has %d characters (max %d)", size, generator.MaxAlphabet),
		})
	case !utf8.ValidString(g.Alphabet):
		errs = append(errs, ValidationError{
			Field:   "generator.alphabet.encoding",
			Message: "alphabet is not valid UTF-8",
		})
	}

	if !g.AllowDuplicates && size > 0 && g.Length > size {
		errs = append(errs, ValidationError{
			Field:   "generator.length",
			Message: fmt.Sprintf("length %d exceeds alphabet size %d without duplicates", g.Length, size),
		})
	}

	caps, err := entropy.ParseCapNames(g.Sources)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{Field: "generator.sources", Message: err.Error()})
	case caps == entropy.CapNone:
		errs = append(errs, *RequiredFieldError("generator.sources"))
	}

	return errs
}

func validateHardware(h *HardwareConfig) ValidationErrors {
	var errs ValidationErrors

	if _, _, err := bitops.ParseExtension(h.Extension); err != nil {
		errs = append(errs, ValidationError{
			Field:   "hardware.extension",
			Message: fmt.Sprintf("invalid extension: %s (valid: auto, none, legacy64, sse, sse2, avx, neon)", h.Extension),
		})
	}

	if h.TPMDevice != "" {
		if _, err := os.Stat(h.TPMDevice); err != nil {
			errs = append(errs, ValidationError{
				Field:   "hardware.tpm_device",
				Message: fmt.Sprintf("device not found: %s", h.TPMDevice),
			})
		}
	}

	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: fmt.Sprintf("file path is required when output is '%s'", l.Output),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %q (valid: stdout, stderr, file, both)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}

	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}

	return errs
}

// IsWarning returns true if this is a non-fatal validation issue.
func (e *ValidationError) IsWarning() bool {
	warningFields := []string{
		"generator.alphabet",  // Empty alphabet generates empty passwords
		"hardware.tpm_device", // Device can appear after boot
	}
	for _, f := range warningFields {
		if e.Field == f {
			return true
		}
	}
	return false
}

// Warnings returns only warning-level validation errors.
func (e ValidationErrors) Warnings() ValidationErrors {
	var warnings ValidationErrors
	for _, err := range e {
		if err.IsWarning() {
			warnings = append(warnings, err)
		}
	}
	return warnings
}

// Errors returns only error-level validation errors.
func (e ValidationErrors) Errors() ValidationErrors {
	var errs ValidationErrors
	for _, err := range e {
		if !err.IsWarning() {
			errs = append(errs, err)
		}
	}
	return errs
}

// HasErrors returns true if there are any non-warning errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e.Errors()) > 0
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}
