package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/viathefalcon/waveson-passwords/internal/entropy"
)

type capsReport struct {
	Caps      []string        `json:"caps"`
	Mask      uint32          `json:"mask"`
	Extension string          `json:"extension"`
	ExtMask   uint32          `json:"extension_mask"`
	Sources   []entropy.Stats `json:"sources"`
}

func (a *app) cmdCaps(args []string) int {
	fs := a.flagSet("caps")
	configPath := fs.String("config", "", "path to config file")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := a.loadConfig(*configPath)
	if err != nil {
		return a.reportConfigError(err)
	}
	logger, err := a.setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer logger.Close()

	gen, err := a.openGenerator(cfg, logger.WithComponent("generator").Logger)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer gen.Close()

	caps := gen.Caps()
	report := capsReport{
		Caps:      caps.Names(),
		Mask:      uint32(caps),
		Extension: gen.Extension().String(),
		ExtMask:   uint32(gen.Extension()),
		Sources:   gen.Stats(),
	}
	if report.Caps == nil {
		report.Caps = []string{}
	}

	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	fmt.Fprintf(a.stdout, "Sources:   %s (0x%X)\n", caps, report.Mask)
	fmt.Fprintf(a.stdout, "Extension: %s (0x%X)\n", report.Extension, report.ExtMask)
	for _, s := range report.Sources {
		fmt.Fprintf(a.stdout, "\n%s\n", s.Name)
		fmt.Fprintf(a.stdout, "  Available: %t\n", s.Available)
		fmt.Fprintf(a.stdout, "  Fills:     %d (%d bytes, %d errors)\n", s.Fills, s.BytesGenerated, s.Errors)
		if !s.LastSuccess.IsZero() {
			fmt.Fprintf(a.stdout, "  Last OK:   %s\n", s.LastSuccess.Format(time.RFC3339))
		}
		if s.LastError != "" {
			fmt.Fprintf(a.stdout, "  Last err:  %s\n", s.LastError)
		}
	}
	return exitOK
}
