// Package config handles configuration loading, validation, and management for wpg.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/viathefalcon/waveson-passwords/internal/bitops"
	"github.com/viathefalcon/waveson-passwords/internal/entropy"
	"github.com/viathefalcon/waveson-passwords/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// DefaultAlphabet is letters, digits and shell-safe punctuation.
const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#$%&*+-=?@^_"

// Config holds the complete wpg configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Generator configures password generation.
	Generator GeneratorConfig `toml:"generator" json:"generator" yaml:"generator"`

	// Hardware configures entropy sources and the XOR path.
	Hardware HardwareConfig `toml:"hardware" json:"hardware" yaml:"hardware"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// mu protects concurrent access to the config.
	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// GeneratorConfig holds password generation settings.
type GeneratorConfig struct {
	// Length is the number of characters per password (1-255).
	Length int `toml:"length" json:"length" yaml:"length"`

	// Alphabet is the set of characters passwords are drawn from.
	Alphabet string `toml:"alphabet" json:"alphabet" yaml:"alphabet"`

	// AllowDuplicates permits a character index to repeat.
	AllowDuplicates bool `toml:"allow_duplicates" json:"allow_duplicates" yaml:"allow_duplicates"`

	// Sources lists the entropy sources to mix: rdrand, tpm12, tpm20.
	Sources []string `toml:"sources" json:"sources" yaml:"sources"`
}

// HardwareConfig holds hardware settings.
type HardwareConfig struct {
	// TPMDevice overrides the TPM 2.0 character device (Linux).
	TPMDevice string `toml:"tpm_device" json:"tpm_device" yaml:"tpm_device"`

	// Extension forces a vector path: auto, none, legacy64, sse, sse2, avx, neon.
	Extension string `toml:"extension" json:"extension" yaml:"extension"`

	// DebugXOR cross-checks every combine against the scalar path.
	DebugXOR bool `toml:"debug_xor" json:"debug_xor" yaml:"debug_xor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stdout, stderr, file or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file used when Output includes a file.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Generator: GeneratorConfig{
			Length:          16,
			Alphabet:        DefaultAlphabet,
			AllowDuplicates: true,
			Sources:         entropy.CapAll.Names(),
		},
		Hardware: HardwareConfig{
			Extension: "auto",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   logging.DefaultLogPath(),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	return NewLoader(path).Load()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with WPG_.
func (c *Config) ApplyEnvOverrides() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("WPG_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WPG_LENGTH: %w", err)
		}
		c.Generator.Length = n
	}
	if v := os.Getenv("WPG_ALPHABET"); v != "" {
		c.Generator.Alphabet = v
	}
	if v := os.Getenv("WPG_ALLOW_DUPLICATES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WPG_ALLOW_DUPLICATES: %w", err)
		}
		c.Generator.AllowDuplicates = b
	}
	if v := os.Getenv("WPG_SOURCES"); v != "" {
		caps, err := entropy.ParseCaps(v)
		if err != nil {
			return fmt.Errorf("WPG_SOURCES: %w", err)
		}
		c.Generator.Sources = caps.Names()
	}

	if v := os.Getenv("WPG_TPM_DEVICE"); v != "" {
		c.Hardware.TPMDevice = v
	}
	if v := os.Getenv("WPG_EXTENSION"); v != "" {
		c.Hardware.Extension = strings.ToLower(v)
	}

	if v := os.Getenv("WPG_LOG_LEVEL"); v != "" {
		level, err := logging.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("WPG_LOG_LEVEL: %w", err)
		}
		c.Logging.Level = logging.LevelString(level)
	}
	return nil
}

// normalize lowercases the enumerated fields. Files may spell them in any case.
func (c *Config) normalize() {
	for i, s := range c.Generator.Sources {
		c.Generator.Sources[i] = strings.ToLower(strings.TrimSpace(s))
	}
	c.Hardware.Extension = strings.ToLower(c.Hardware.Extension)
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		c.Logging.Level = logging.LevelString(level)
	}
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Config{
		Version: c.Version,
		Generator: GeneratorConfig{
			Length:          c.Generator.Length,
			Alphabet:        c.Generator.Alphabet,
			AllowDuplicates: c.Generator.AllowDuplicates,
			Sources:         append([]string{}, c.Generator.Sources...),
		},
		Hardware: c.Hardware,
		Logging:  c.Logging,
	}
}

// SourceCaps returns the configured sources as a capability set.
func (c *Config) SourceCaps() (entropy.Caps, error) {
	return entropy.ParseCapNames(c.Generator.Sources)
}

// VectorExtension returns the forced extension, or auto=true when the
// widest detected extension should be used.
func (c *Config) VectorExtension() (ext bitops.Extension, auto bool, err error) {
	return bitops.ParseExtension(c.Hardware.Extension)
}

// AlphabetRunes returns the alphabet as characters.
func (c *Config) AlphabetRunes() []rune {
	return []rune(c.Generator.Alphabet)
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.Output = c.Logging.Output
	if c.Logging.FilePath != "" {
		lc.FilePath = c.Logging.FilePath
	}
	lc.MaxSize = int64(c.Logging.MaxSizeMB)
	lc.MaxBackups = c.Logging.MaxBackups
	return lc, nil
}
