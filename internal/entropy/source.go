package entropy

import (
	"errors"
	"sync"
	"time"
)

// Entropy errors
var (
	ErrSourceUnavailable = errors.New("entropy: source not available")
	ErrUnderflow         = errors.New("entropy: hardware rng underflow")
	ErrShortResponse     = errors.New("entropy: short tpm response")
	ErrEmptyResponse     = errors.New("entropy: tpm returned no random bytes")
)

// Source is a hardware entropy source.
//
// Fill writes exactly len(buf) random bytes and returns len(buf), or
// returns 0 if the request could not be satisfied in full. A zero return
// may leave buf partially overwritten.
type Source interface {
	// Cap returns the single capability this source provides.
	Cap() Caps

	// Name returns a human-readable name.
	Name() string

	// Available reports whether the source was reachable when opened.
	Available() bool

	// Fill fills buf with random bytes.
	Fill(buf []byte) int

	// Stats returns counters for this source.
	Stats() Stats

	// Close releases any platform resources held by the source.
	Close() error
}

// Stats contains statistics about an entropy source.
type Stats struct {
	Cap            Caps      `json:"-"`
	Name           string    `json:"name"`
	Available      bool      `json:"available"`
	Fills          uint64    `json:"fills"`
	BytesGenerated uint64    `json:"bytes_generated"`
	Errors         uint64    `json:"errors"`
	LastError      string    `json:"last_error,omitempty"`
	LastSuccess    time.Time `json:"last_success,omitempty"`
}

// counters accumulates Stats for a source.
type counters struct {
	mu    sync.Mutex
	stats Stats
}

func (c *counters) success(n int) {
	c.mu.Lock()
	c.stats.Fills++
	c.stats.BytesGenerated += uint64(n)
	c.stats.LastSuccess = time.Now()
	c.mu.Unlock()
}

func (c *counters) failure(err error) {
	c.mu.Lock()
	c.stats.Errors++
	if err != nil {
		c.stats.LastError = err.Error()
	}
	c.mu.Unlock()
}

func (c *counters) snapshot(cp Caps, name string, available bool) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Cap = cp
	s.Name = name
	s.Available = available
	return s
}
