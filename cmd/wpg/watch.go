package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/viathefalcon/waveson-passwords/internal/config"
	"github.com/viathefalcon/waveson-passwords/internal/entropy"
	"github.com/viathefalcon/waveson-passwords/internal/generator"
	"github.com/viathefalcon/waveson-passwords/internal/worker"
)

// watchSettings is the part of the config a reload can change.
type watchSettings struct {
	mu     sync.Mutex
	length int
	caps   entropy.Caps
}

func (s *watchSettings) update(cfg *config.Config) {
	caps, _ := cfg.SourceCaps()
	s.mu.Lock()
	s.length = cfg.Generator.Length
	s.caps = caps
	s.mu.Unlock()
}

func (s *watchSettings) get() (int, entropy.Caps) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length, s.caps
}

// pushSettings forwards the alphabet and duplicate policy to the worker.
func pushSettings(w *worker.Worker, cfg *config.Config) error {
	if err := w.SetAlphabet(cfg.AlphabetRunes()); err != nil {
		return err
	}
	return w.AllowDuplicates(cfg.Generator.AllowDuplicates)
}

func (a *app) cmdWatch(args []string) int {
	fs := a.flagSet("watch")
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	loader := config.NewLoader(resolveConfigPath(*configPath))
	defer loader.Close()
	cfg, err := loader.Load()
	if err != nil {
		return a.reportConfigError(err)
	}

	logger, err := a.setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer logger.Close()
	log := logger.WithComponent("watch").Logger

	gen, err := a.openGenerator(cfg, logger.WithComponent("generator").Logger)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.Start(ctx, gen, worker.Options{
		MaxLength: generator.MaxAlphabet,
		Logger:    logger.WithComponent("worker").Logger,
	})
	defer w.Wait()

	started := <-w.Started()
	log.Info("worker started", "caps", started.Caps.String(), "extension", started.Extension.String())

	settings := &watchSettings{}
	settings.update(cfg)
	if err := pushSettings(w, cfg); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFailure
	}

	loader.OnChange(func(c *config.Config) {
		settings.update(c)
		if err := pushSettings(w, c); err != nil {
			log.Warn("apply reloaded config", "error", err)
			return
		}
		log.Info("config reloaded", "length", c.Generator.Length, "sources", strings.Join(c.Generator.Sources, ","))
	})
	if err := loader.Watch(); err != nil {
		log.Warn("config watch disabled", "path", loader.Path(), "error", err)
	} else {
		log.Info("watching config", "path", loader.Path())
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	pending := 0
	exit := exitOK
	for lines != nil || pending > 0 {
		select {
		case <-ctx.Done():
			return exit

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			length, caps := settings.get()
			if s := strings.TrimSpace(line); s != "" {
				n, err := strconv.Atoi(s)
				if err != nil {
					fmt.Fprintf(a.stderr, "Error: invalid length %q\n", s)
					continue
				}
				length = n
			}
			if err := w.Generate(length, caps); err != nil {
				fmt.Fprintf(a.stderr, "Error: %v\n", err)
				return exitFailure
			}
			pending++

		case res, ok := <-w.Results():
			if !ok {
				return exit
			}
			pending--
			switch {
			case res.Err != nil:
				fmt.Fprintf(a.stderr, "Error: %v\n", res.Err)
				exit = exitFailure
			case !res.OK():
				fmt.Fprintf(a.stderr, "Error: %s\n", failureMessage(res.Failed))
				exit = exitFailure
			default:
				fmt.Fprintln(a.stdout, string(res.Password))
			}
			res.Wipe()

		case err := <-loader.Errors():
			log.Warn("config reload rejected", "error", err)
		}
	}
	return exit
}
