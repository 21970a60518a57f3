// Package generator turns mixed hardware entropy into passwords.
//
// Each round every selected source fills a scratch buffer that is XORed
// into an accumulator, so the result depends on every source. Accumulator
// bytes are then mapped onto the alphabet by byte mod len(alphabet),
// skipping already-used indices when duplicates are disallowed.
package generator

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/viathefalcon/waveson-passwords/internal/bitops"
	"github.com/viathefalcon/waveson-passwords/internal/entropy"
	"github.com/viathefalcon/waveson-passwords/internal/logging"
	"github.com/viathefalcon/waveson-passwords/internal/security"
)

// MaxAlphabet is the largest alphabet a single random byte can index.
const MaxAlphabet = 255

// Generator errors
var (
	ErrAlphabetTooLong       = errors.New("generator: alphabet longer than 255 characters")
	ErrLengthExceedsAlphabet = errors.New("generator: length exceeds alphabet without duplicates")
	ErrClosed                = errors.New("generator: closed")
)

// Generator owns one live source per available capability. Calls are
// serialized.
type Generator struct {
	mu      sync.Mutex
	sources []entropy.Source
	caps    entropy.Caps
	xor     bitops.XOR
	logger  *slog.Logger
	closed  bool

	// construction options
	want      entropy.Caps
	tpmDevice string
	injected  []entropy.Source
	forced    *bitops.Extension
	debugXOR  bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithCaps limits which capabilities are opened.
func WithCaps(c entropy.Caps) Option {
	return func(g *Generator) {
		g.want = c
	}
}

// WithTPMDevice overrides the TPM 2.0 device path.
func WithTPMDevice(path string) Option {
	return func(g *Generator) {
		g.tpmDevice = path
	}
}

// WithSources uses the given sources instead of probing hardware. The
// generator takes ownership and closes them.
func WithSources(sources ...entropy.Source) Option {
	return func(g *Generator) {
		g.injected = append(g.injected, sources...)
	}
}

// WithExtension forces a vector extension instead of the widest detected.
func WithExtension(ext bitops.Extension) Option {
	return func(g *Generator) {
		g.forced = &ext
	}
}

// WithDebugXOR cross-checks every combine against the scalar path.
func WithDebugXOR(enabled bool) Option {
	return func(g *Generator) {
		g.debugXOR = enabled
	}
}

// New opens the requested sources and selects the XOR implementation.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{want: entropy.CapAll}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.Default().WithComponent("generator").Logger
	}

	if g.forced != nil {
		x, err := bitops.New(*g.forced)
		if err != nil {
			return nil, err
		}
		g.xor = x
	} else {
		g.xor = bitops.Best()
	}
	if g.debugXOR {
		g.xor = bitops.Debug(g.xor, g.logger)
	}

	if g.injected != nil {
		g.sources = g.adopt(g.injected)
		g.injected = nil
	} else {
		g.sources = entropy.Discover(g.want, entropy.Options{TPMDevice: g.tpmDevice, Logger: g.logger})
	}
	g.caps = entropy.CapsOf(g.sources)

	g.logger.Info("generator ready", "caps", g.caps.String(), "extension", g.xor.Extension().String())
	return g, nil
}

// adopt keeps available sources within want, one per capability.
func (g *Generator) adopt(sources []entropy.Source) []entropy.Source {
	var kept []entropy.Source
	var seen entropy.Caps
	for _, s := range sources {
		c := s.Cap()
		if !s.Available() || !g.want.Has(c) || seen.Has(c) {
			_ = s.Close()
			continue
		}
		seen |= c
		kept = append(kept, s)
	}
	return kept
}

// Caps returns the capabilities of the live sources.
func (g *Generator) Caps() entropy.Caps {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.caps
}

// Extension returns the vector extension used to combine sources.
func (g *Generator) Extension() bitops.Extension {
	return g.xor.Extension()
}

// Stats returns per-source statistics.
func (g *Generator) Stats() []entropy.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	stats := make([]entropy.Stats, 0, len(g.sources))
	for _, s := range g.sources {
		stats = append(stats, s.Stats())
	}
	return stats
}

// Generate fills dst with characters drawn from alphabet using the live
// sources in want. It returns the number of characters written and the
// capabilities whose sources failed. On any failure nothing is returned
// and dst is wiped.
//
// An empty alphabet, an empty dst or no usable source yields (0, CapNone,
// nil). An error is returned only for requests that cannot complete.
func (g *Generator) Generate(dst []rune, want entropy.Caps, alphabet []rune, allowDuplicates bool) (int, entropy.Caps, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return 0, entropy.CapNone, ErrClosed
	}
	if len(alphabet) > MaxAlphabet {
		return 0, entropy.CapNone, ErrAlphabetTooLong
	}
	if len(alphabet) == 0 || len(dst) == 0 {
		return 0, entropy.CapNone, nil
	}
	if !allowDuplicates && len(dst) > len(alphabet) {
		return 0, entropy.CapNone, ErrLengthExceedsAlphabet
	}

	active := g.selectSources(want)
	if len(active) == 0 {
		return 0, entropy.CapNone, nil
	}

	front := security.NewSecureBytes(len(dst))
	defer front.Destroy()
	back := security.NewSecureBytes(len(dst))
	defer back.Destroy()

	tracker := bitops.NewTracker(len(alphabet), allowDuplicates)
	size := len(alphabet)
	out := 0
	failed := entropy.CapNone

	for out < len(dst) && failed == entropy.CapNone {
		remaining := len(dst) - out
		acc := front.Bytes()[:remaining]
		scratch := back.Bytes()[:remaining]

		produced := remaining
		for _, src := range active {
			n := src.Fill(scratch[:produced])
			if n == 0 {
				failed |= src.Cap()
				g.logger.Warn("entropy source failed",
					"source", src.Cap().String(),
					"error", src.Stats().LastError)
				break
			}
			if n < produced {
				produced = n
			}
			g.xor.Apply(acc, scratch, produced)
		}

		if failed == entropy.CapNone {
			for _, b := range acc[:produced] {
				index := int(b) % size
				if tracker.IsSet(index) {
					continue
				}
				dst[out] = alphabet[index]
				tracker.Set(index)
				out++
			}
		}

		front.Clear()
		back.Clear()
	}

	if failed != entropy.CapNone {
		security.WipeRunes(dst[:out])
		return 0, failed, nil
	}
	g.logger.Debug("generated", "length", out, "caps", entropy.CapsOf(active).String(), "locked", front.Locked())
	return out, entropy.CapNone, nil
}

func (g *Generator) selectSources(want entropy.Caps) []entropy.Source {
	var active []entropy.Source
	for _, s := range g.sources {
		if want.Has(s.Cap()) {
			active = append(active, s)
		}
	}
	return active
}

// Close releases every source. Further Generate calls fail with ErrClosed.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	err := entropy.CloseAll(g.sources)
	g.sources = nil
	g.caps = entropy.CapNone
	return err
}
