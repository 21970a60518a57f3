package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/viathefalcon/waveson-passwords/internal/config"
)

func (a *app) cmdConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "Error: config requires a subcommand: init, path, show, schema")
		return exitUsage
	}
	sub, args := args[0], args[1:]

	fs := a.flagSet("config " + sub)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	path := resolveConfigPath(*configPath)

	switch sub {
	case "init":
		_, created, err := config.LoadOrCreate(path)
		if err != nil {
			return a.reportConfigError(err)
		}
		if created {
			fmt.Fprintf(a.stdout, "Created %s\n", path)
		} else {
			fmt.Fprintf(a.stdout, "Config already exists: %s\n", path)
		}
		return exitOK

	case "path":
		fmt.Fprintln(a.stdout, path)
		return exitOK

	case "show":
		cfg, err := a.loadConfig(path)
		if err != nil {
			return a.reportConfigError(err)
		}
		data, err := config.Marshal(cfg, path)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitFailure
		}
		a.stdout.Write(data)
		return exitOK

	case "schema":
		a.stdout.Write(config.Schema())
		return exitOK

	default:
		fmt.Fprintf(a.stderr, "Unknown config command: %s\n", sub)
		return exitUsage
	}
}
