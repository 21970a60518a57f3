package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/wpg/
//   - Linux:   ~/.config/wpg/
//   - Windows: %APPDATA%\wpg\
//
// WPG_CONFIG_DIR overrides all of these.
func PlatformConfigDir() string {
	if dir := os.Getenv("WPG_CONFIG_DIR"); dir != "" {
		return dir
	}
	switch runtime.GOOS {
	case "darwin":
		return macOSConfigDir()
	case "windows":
		return windowsConfigDir()
	default:
		return xdgConfigDir()
	}
}

func macOSConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, "Library", "Application Support", "wpg")
}

func xdgConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wpg")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wpg")
}

func windowsConfigDir() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "wpg")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "AppData", "Roaming", "wpg")
}

// SupportedConfigFormats returns the file extensions the loader understands.
func SupportedConfigFormats() []string {
	return []string{
		"toml",
		"json",
		"yaml",
		"yml",
	}
}

// FindConfigFile searches the current and config directories for a
// config file. Returns the first one found, or "".
func FindConfigFile() string {
	for _, dir := range []string{".", PlatformConfigDir()} {
		for _, ext := range SupportedConfigFormats() {
			path := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
