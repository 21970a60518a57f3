// wpg generates passwords from hardware entropy sources.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/viathefalcon/waveson-passwords/internal/config"
	"github.com/viathefalcon/waveson-passwords/internal/generator"
	"github.com/viathefalcon/waveson-passwords/internal/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// app carries the streams and hooks a command runs with.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// openGenerator builds the generator for cfg.
	openGenerator func(cfg *config.Config, logger *slog.Logger) (*generator.Generator, error)
}

func main() {
	a := &app{
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		openGenerator: openGenerator,
	}
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	cmd := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "generate":
		return a.cmdGenerate(args)
	case "caps":
		return a.cmdCaps(args)
	case "watch":
		return a.cmdWatch(args)
	case "config":
		return a.cmdConfig(args)
	case "help", "-h", "--help":
		a.usage()
		return exitOK
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", cmd)
		a.usage()
		return exitUsage
	}
}

func (a *app) usage() {
	fmt.Fprintln(a.stderr, `wpg - hardware entropy password generator

Usage: wpg [command] [options]

Commands:
  generate        Generate passwords (default)
  caps            Show available entropy sources and the XOR path
  watch           Generate a password for each line read from stdin,
                  reloading the config file when it changes
  config init     Write the default config file if none exists
  config path     Print the config file location
  config show     Print the effective configuration
  config schema   Print the config JSON schema
  help            Show this help message

Generate options:
  -length <n>             Password length (1-255)
  -alphabet <chars>       Characters to draw from
  -sources <list>         Entropy sources: rdrand,tpm12,tpm20,tpm,all
  -allow-duplicates       Allow characters to repeat
  -count <n>              Number of passwords to print
  -save                   Store the generator settings in the config file

Common options:
  -config <path>  Path to config file (default: platform config dir)`)
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = a.usage
	return fs
}

// resolveConfigPath picks -config, then a config file found on disk, then
// the default location.
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if found := config.FindConfigFile(); found != "" {
		return found
	}
	return config.ConfigPath()
}

func (a *app) loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the configured logger as the default.
func (a *app) setupLogging(cfg *config.Config) (*logging.Logger, error) {
	lc, err := cfg.LoggerConfig()
	if err != nil {
		return nil, err
	}
	lc.Writer = a.stderr
	logger, err := logging.New(lc)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}

// openGenerator opens the configured hardware.
func openGenerator(cfg *config.Config, logger *slog.Logger) (*generator.Generator, error) {
	want, err := cfg.SourceCaps()
	if err != nil {
		return nil, err
	}
	ext, auto, err := cfg.VectorExtension()
	if err != nil {
		return nil, err
	}

	opts := []generator.Option{
		generator.WithLogger(logger),
		generator.WithCaps(want),
		generator.WithTPMDevice(cfg.Hardware.TPMDevice),
		generator.WithDebugXOR(cfg.Hardware.DebugXOR),
	}
	if !auto {
		opts = append(opts, generator.WithExtension(ext))
	}
	return generator.New(opts...)
}

// reportConfigError prints err and returns the exit code for it.
func (a *app) reportConfigError(err error) int {
	var errs config.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			fmt.Fprintf(a.stderr, "Error: %s\n", e.Error())
		}
		return exitUsage
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	if errors.Is(err, config.ErrInvalidConfig) {
		return exitUsage
	}
	return exitFailure
}
