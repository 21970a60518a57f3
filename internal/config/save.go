package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// SaveConfig writes cfg to path in the format named by its extension.
// Unknown extensions are written as TOML.
func SaveConfig(cfg *Config, path string) error {
	data, err := Marshal(cfg, path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Marshal encodes cfg in the format SaveConfig would use for path.
func Marshal(cfg *Config, path string) ([]byte, error) {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()
	data, err := encodeConfig(cfg, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func encodeConfig(cfg *Config, f format) ([]byte, error) {
	switch f {
	case formatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatYAML:
		return yaml.Marshal(cfg)
	default:
		var buf bytes.Buffer
		buf.WriteString("# wpg configuration\n\n")
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
