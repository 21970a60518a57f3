package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viathefalcon/waveson-passwords/internal/bitops"
	"github.com/viathefalcon/waveson-passwords/internal/entropy"
	"github.com/viathefalcon/waveson-passwords/internal/logging"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, 16, cfg.Generator.Length)
	assert.True(t, cfg.Generator.AllowDuplicates)
	assert.Equal(t, []string{"rdrand", "tpm12", "tpm20"}, cfg.Generator.Sources)
	assert.Len(t, cfg.AlphabetRunes(), 75)

	caps, err := cfg.SourceCaps()
	require.NoError(t, err)
	assert.Equal(t, entropy.CapAll, caps)

	_, auto, err := cfg.VectorExtension()
	require.NoError(t, err)
	assert.True(t, auto)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("WPG_CONFIG_DIR", "/tmp/wpg-test")
	assert.Equal(t, filepath.Join("/tmp/wpg-test", "config.toml"), ConfigPath())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Generator, cfg.Generator)
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"config.toml": `
version = 1
[generator]
length = 24
alphabet = "abc123"
sources = ["rdrand", "tpm20"]
[hardware]
extension = "none"
`,
		"config.json": `{
  "version": 1,
  "generator": {"length": 24, "alphabet": "abc123", "sources": ["rdrand", "tpm20"]},
  "hardware": {"extension": "none"}
}`,
		"config.yaml": `
version: 1
generator:
  length: 24
  alphabet: abc123
  sources: [rdrand, tpm20]
hardware:
  extension: none
`,
		"config.conf": `
[generator]
length = 24
alphabet = "abc123"
sources = ["rdrand", "tpm20"]
[hardware]
extension = "none"
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, dir, name, content))
			require.NoError(t, err)

			assert.Equal(t, 24, cfg.Generator.Length)
			assert.Equal(t, "abc123", cfg.Generator.Alphabet)
			assert.True(t, cfg.Generator.AllowDuplicates, "unset keys keep defaults")
			assert.Equal(t, "info", cfg.Logging.Level)

			caps, err := cfg.SourceCaps()
			require.NoError(t, err)
			assert.Equal(t, entropy.CapRDRAND|entropy.CapTPM20, caps)

			ext, auto, err := cfg.VectorExtension()
			require.NoError(t, err)
			assert.False(t, auto)
			assert.Equal(t, bitops.ExtensionNone, ext)
		})
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key":      "[generator]\nlength = 8\ncolour = \"red\"\n",
		"unknown section":  "[network]\nport = 80\n",
		"bad source":       "[generator]\nsources = [\"lavarand\"]\n",
		"bad extension":    "[hardware]\nextension = \"avx512\"\n",
		"length too large": "[generator]\nlength = 300\n",
		"wrong type":       "[generator]\nallow_duplicates = \"yes\"\n",
		"bad level":        "[logging]\nlevel = \"loud\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(name, " ", "_")+".toml", content)
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadAcceptsAnyCaseEnums(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `[generator]
sources = ["RDRAND", "Tpm20"]

[hardware]
extension = "SSE2"

[logging]
level = "WARNING"
format = "JSON"
output = "Stderr"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"rdrand", "tpm20"}, cfg.Generator.Sources)
	assert.Equal(t, "sse2", cfg.Hardware.Extension)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", "{not json")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero length", func(c *Config) { c.Generator.Length = 0 }, "generator.length"},
		{"length over max", func(c *Config) { c.Generator.Length = 256 }, "generator.length"},
		{"length over alphabet", func(c *Config) {
			c.Generator.Alphabet = "abc"
			c.Generator.Length = 4
			c.Generator.AllowDuplicates = false
		}, "generator.length"},
		{"alphabet too long", func(c *Config) { c.Generator.Alphabet = strings.Repeat("x", 256) }, "generator.alphabet.size"},
		{"no sources", func(c *Config) { c.Generator.Sources = nil }, "generator.sources"},
		{"unknown source", func(c *Config) { c.Generator.Sources = []string{"dice"} }, "generator.sources"},
		{"bad extension", func(c *Config) { c.Hardware.Extension = "mmx2" }, "hardware.extension"},
		{"bad version", func(c *Config) { c.Version = 2 }, "version"},
		{"file output needs path", func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, "logging.file_path"},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }, "logging.output"},
		{"bad max size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var errs ValidationErrors
			require.True(t, errors.As(err, &errs))
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidationWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generator.Alphabet = ""
	cfg.Hardware.TPMDevice = filepath.Join(t.TempDir(), "tpmrm9")

	assert.NoError(t, ValidateConfig(cfg), "warnings alone are not fatal")

	errs := CheckConfig(cfg)
	assert.False(t, errs.HasErrors())
	require.Len(t, errs.Warnings(), 2)
	assert.Equal(t, "generator.alphabet", errs.Warnings()[0].Field)
	assert.Equal(t, "hardware.tpm_device", errs.Warnings()[1].Field)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WPG_LENGTH", "32")
	t.Setenv("WPG_ALPHABET", "01")
	t.Setenv("WPG_ALLOW_DUPLICATES", "false")
	t.Setenv("WPG_SOURCES", "RDRAND, tpm20")
	t.Setenv("WPG_TPM_DEVICE", "/dev/tpmrm1")
	t.Setenv("WPG_EXTENSION", "SSE2")
	t.Setenv("WPG_LOG_LEVEL", "DEBUG")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnvOverrides())

	assert.Equal(t, 32, cfg.Generator.Length)
	assert.Equal(t, "01", cfg.Generator.Alphabet)
	assert.False(t, cfg.Generator.AllowDuplicates)
	assert.Equal(t, []string{"rdrand", "tpm20"}, cfg.Generator.Sources)
	assert.Equal(t, "/dev/tpmrm1", cfg.Hardware.TPMDevice)
	assert.Equal(t, "sse2", cfg.Hardware.Extension)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvOverridesMalformed(t *testing.T) {
	t.Setenv("WPG_LENGTH", "many")
	assert.Error(t, DefaultConfig().ApplyEnvOverrides())

	t.Setenv("WPG_LENGTH", "")
	t.Setenv("WPG_ALLOW_DUPLICATES", "perhaps")
	assert.Error(t, DefaultConfig().ApplyEnvOverrides())

	t.Setenv("WPG_ALLOW_DUPLICATES", "")
	t.Setenv("WPG_SOURCES", "rdrand,dice")
	assert.ErrorContains(t, DefaultConfig().ApplyEnvOverrides(), "WPG_SOURCES")

	t.Setenv("WPG_SOURCES", "")
	t.Setenv("WPG_LOG_LEVEL", "loud")
	assert.ErrorContains(t, DefaultConfig().ApplyEnvOverrides(), "WPG_LOG_LEVEL")
}

func TestApplyEnvOverridesCanonicalizes(t *testing.T) {
	t.Setenv("WPG_SOURCES", "tpm|RDRAND")
	t.Setenv("WPG_LOG_LEVEL", "Warning")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnvOverrides())
	assert.Equal(t, []string{"rdrand", "tpm12", "tpm20"}, cfg.Generator.Sources)
	assert.Equal(t, "warn", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Generator.Sources[0] = "tpm12"
	clone.Generator.Length = 99

	assert.Equal(t, "rdrand", cfg.Generator.Sources[0])
	assert.Equal(t, 16, cfg.Generator.Length)
}

func TestLoggerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = "/var/log/wpg.log"
	cfg.Logging.MaxSizeMB = 5

	lc, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
	assert.Equal(t, "file", lc.Output)
	assert.Equal(t, "/var/log/wpg.log", lc.FilePath)
	assert.Equal(t, int64(5), lc.MaxSize)

	cfg.Logging.Level = "loud"
	_, err = cfg.LoggerConfig()
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"config.toml", "config.json", "config.yaml", "nested/config.yml"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Generator.Length = 12
			cfg.Generator.Sources = []string{"tpm20"}
			cfg.Hardware.DebugXOR = true

			path := filepath.Join(dir, name)
			require.NoError(t, SaveConfig(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			if os.PathSeparator == '/' {
				assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
			}

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Generator, loaded.Generator)
			assert.Equal(t, cfg.Hardware, loaded.Hardware)
			assert.Equal(t, cfg.Logging, loaded.Logging)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 16, cfg.Generator.Length)
	assert.FileExists(t, path)

	_, created, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WPG_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())

	assert.Empty(t, FindConfigFile())

	path := writeFile(t, dir, "config.yaml", "generator:\n  length: 8\n")
	assert.Equal(t, path, FindConfigFile())
}

func TestLoaderWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "[generator]\nlength = 8\n")

	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Generator.Length)

	changed := make(chan *Config, 4)
	loader.OnChange(func(c *Config) { changed <- c })
	require.NoError(t, loader.Watch())

	writeFile(t, dir, "config.toml", "[generator]\nlength = 20\n")

	select {
	case c := <-changed:
		assert.Equal(t, 20, c.Generator.Length)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
	assert.Equal(t, 20, loader.Config().Generator.Length)

	// An invalid edit is reported and the last good config is kept.
	writeFile(t, dir, "config.toml", "[generator]\nlength = 0\n")
	select {
	case err := <-loader.Errors():
		assert.ErrorIs(t, err, ErrInvalidConfig)
	case <-time.After(5 * time.Second):
		t.Fatal("no error after invalid write")
	}
	assert.Equal(t, 20, loader.Config().Generator.Length)
}

func TestSchemaIsExposed(t *testing.T) {
	assert.Contains(t, string(Schema()), `"additionalProperties": false`)
	assert.NoError(t, ValidateDocument(map[string]any{"version": float64(1)}))
	assert.ErrorIs(t, ValidateDocument(map[string]any{"extra": true}), ErrInvalidConfig)
}
