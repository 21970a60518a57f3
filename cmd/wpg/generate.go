package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/viathefalcon/waveson-passwords/internal/config"
	"github.com/viathefalcon/waveson-passwords/internal/entropy"
	"github.com/viathefalcon/waveson-passwords/internal/generator"
	"github.com/viathefalcon/waveson-passwords/internal/security"
)

type generateFlags struct {
	configPath      string
	length          int
	alphabet        string
	sources         string
	allowDuplicates bool
	count           int
	save            bool
}

func (a *app) parseGenerateFlags(args []string) (*generateFlags, map[string]bool, error) {
	f := &generateFlags{}
	fs := a.flagSet("generate")
	fs.StringVar(&f.configPath, "config", "", "path to config file")
	fs.IntVar(&f.length, "length", 0, "password length")
	fs.StringVar(&f.alphabet, "alphabet", "", "characters to draw from")
	fs.StringVar(&f.sources, "sources", "", "entropy sources")
	fs.BoolVar(&f.allowDuplicates, "allow-duplicates", false, "allow characters to repeat")
	fs.IntVar(&f.count, "count", 1, "number of passwords")
	fs.BoolVar(&f.save, "save", false, "store the generator settings in the config file")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// apply overrides cfg with the flags that were given.
func (f *generateFlags) apply(cfg *config.Config, set map[string]bool) error {
	if set["length"] {
		cfg.Generator.Length = f.length
	}
	if set["alphabet"] {
		cfg.Generator.Alphabet = f.alphabet
	}
	if set["allow-duplicates"] {
		cfg.Generator.AllowDuplicates = f.allowDuplicates
	}
	if set["sources"] {
		caps, err := entropy.ParseCaps(f.sources)
		if err != nil {
			return fmt.Errorf("-sources: %w", err)
		}
		cfg.Generator.Sources = caps.Names()
	}
	return nil
}

func (a *app) cmdGenerate(args []string) int {
	f, set, err := a.parseGenerateFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitUsage
	}
	if f.count < 1 {
		fmt.Fprintln(a.stderr, "Error: -count must be at least 1")
		return exitUsage
	}

	path := resolveConfigPath(f.configPath)
	cfg, err := a.loadConfig(path)
	if err != nil {
		return a.reportConfigError(err)
	}
	if err := f.apply(cfg, set); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		return a.reportConfigError(err)
	}
	if f.save {
		if err := config.SaveConfig(cfg, path); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitFailure
		}
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

	want, _ := cfg.SourceCaps()
	if gen.Caps()&want == entropy.CapNone {
		fmt.Fprintf(a.stderr, "Error: %s\n", noSourceMessage(want))
		return exitFailure
	}

	alphabet := cfg.AlphabetRunes()
	defer security.WipeRunes(alphabet)
	dst := make([]rune, cfg.Generator.Length)
	defer security.WipeRunes(dst)

	for i := 0; i < f.count; i++ {
		n, failed, err := gen.Generate(dst, want, alphabet, cfg.Generator.AllowDuplicates)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			if errors.Is(err, generator.ErrLengthExceedsAlphabet) || errors.Is(err, generator.ErrAlphabetTooLong) {
				return exitUsage
			}
			return exitFailure
		}
		if failed != entropy.CapNone {
			fmt.Fprintf(a.stderr, "Error: %s\n", failureMessage(failed))
			return exitFailure
		}
		fmt.Fprintln(a.stdout, string(dst[:n]))
		security.WipeRunes(dst)
	}
	return exitOK
}
