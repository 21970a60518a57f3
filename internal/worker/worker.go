// Package worker runs a password generator on its own goroutine.
//
// Requests are queued and handled in order. The worker publishes a
// Started event once, a Generated event per generate request, and closes
// Done when it exits. Stop abandons any queued requests.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/viathefalcon/waveson-passwords/internal/bitops"
	"github.com/viathefalcon/waveson-passwords/internal/entropy"
	"github.com/viathefalcon/waveson-passwords/internal/logging"
	"github.com/viathefalcon/waveson-passwords/internal/security"
)

// ErrStopped is returned for requests made after Stop.
var ErrStopped = errors.New("worker: stopped")

// DefaultMaxLength bounds generated passwords when Options.MaxLength is 0.
const DefaultMaxLength = 255

// PasswordGenerator is the generator the worker drives.
type PasswordGenerator interface {
	Caps() entropy.Caps
	Extension() bitops.Extension
	Generate(dst []rune, want entropy.Caps, alphabet []rune, allowDuplicates bool) (int, entropy.Caps, error)
	Close() error
}

// Started reports what the generator found when the worker came up.
type Started struct {
	Caps      entropy.Caps
	Extension bitops.Extension
}

// Generated is the outcome of one generate request. Callers must Wipe it
// once the password has been consumed.
type Generated struct {
	Password  []rune
	Requested entropy.Caps
	Failed    entropy.Caps
	Err       error
}

// Wipe zeroes the password.
func (g *Generated) Wipe() {
	security.WipeRunes(g.Password)
	g.Password = nil
}

// OK reports whether the request produced a complete password.
func (g *Generated) OK() bool {
	return g.Err == nil && g.Failed == entropy.CapNone
}

// Options configures a Worker.
type Options struct {
	// MaxLength clamps requested lengths.
	MaxLength int

	// QueueSize is the number of requests that can be pending.
	QueueSize int

	Logger *slog.Logger
}

type requestKind int

const (
	requestAlphabet requestKind = iota
	requestDuplicates
	requestGenerate
)

type request struct {
	kind     requestKind
	alphabet []rune
	allow    bool
	length   int
	caps     entropy.Caps
}

// Worker owns a PasswordGenerator and serializes access to it.
type Worker struct {
	gen      PasswordGenerator
	maxLen   int
	logger   *slog.Logger
	requests chan request
	started  chan Started
	results  chan *Generated
	stopCh   chan struct{}
	done     chan struct{}
	stopped  atomic.Bool
	stopOnce sync.Once

	// owned by the run goroutine
	alphabet        []rune
	allowDuplicates bool
}

// Start launches a worker that takes ownership of gen and closes it on
// exit. The worker also stops when ctx is cancelled.
func Start(ctx context.Context, gen PasswordGenerator, opts Options) *Worker {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default().WithComponent("worker").Logger
	}

	w := &Worker{
		gen:             gen,
		maxLen:          opts.MaxLength,
		logger:          opts.Logger,
		requests:        make(chan request, opts.QueueSize),
		started:         make(chan Started, 1),
		results:         make(chan *Generated, opts.QueueSize),
		stopCh:          make(chan struct{}),
		done:            make(chan struct{}),
		allowDuplicates: true,
	}
	go w.run(ctx)
	return w
}

// Started delivers one event once the worker is running.
func (w *Worker) Started() <-chan Started { return w.started }

// Results delivers one event per generate request. It is closed when the
// worker exits.
func (w *Worker) Results() <-chan *Generated { return w.results }

// Done is closed when the worker has exited and released the generator.
func (w *Worker) Done() <-chan struct{} { return w.done }

// SetAlphabet replaces the alphabet for later requests. The worker keeps
// its own copy.
func (w *Worker) SetAlphabet(alphabet []rune) error {
	return w.post(request{kind: requestAlphabet, alphabet: append([]rune(nil), alphabet...)})
}

// AllowDuplicates toggles duplicate characters for later requests.
func (w *Worker) AllowDuplicates(allow bool) error {
	return w.post(request{kind: requestDuplicates, allow: allow})
}

// Generate queues a request for a password of length characters drawn
// from the sources in caps.
func (w *Worker) Generate(length int, caps entropy.Caps) error {
	return w.post(request{kind: requestGenerate, length: length, caps: caps})
}

// Stop asks the worker to exit. Queued requests are abandoned.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		close(w.stopCh)
	})
}

// Wait stops the worker and blocks until it has exited.
func (w *Worker) Wait() {
	w.Stop()
	<-w.done
}

func (w *Worker) post(r request) error {
	if w.stopped.Load() {
		return ErrStopped
	}
	select {
	case w.requests <- r:
		return nil
	case <-w.stopCh:
		return ErrStopped
	case <-w.done:
		return ErrStopped
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.results)
	defer func() {
		security.WipeRunes(w.alphabet)
		if err := w.gen.Close(); err != nil {
			w.logger.Warn("close generator", "error", err)
		}
		w.logger.Debug("worker stopped")
	}()

	w.started <- Started{Caps: w.gen.Caps(), Extension: w.gen.Extension()}
	close(w.started)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case r := <-w.requests:
			if w.stopped.Load() {
				return
			}
			if !w.handle(ctx, r) {
				return
			}
		}
	}
}

// handle processes one request and reports whether the worker should
// keep running.
func (w *Worker) handle(ctx context.Context, r request) bool {
	switch r.kind {
	case requestAlphabet:
		security.WipeRunes(w.alphabet)
		w.alphabet = r.alphabet
		w.logger.Debug("alphabet set", "size", len(w.alphabet))
	case requestDuplicates:
		w.allowDuplicates = r.allow
	case requestGenerate:
		res := w.generate(r)
		select {
		case w.results <- res:
		case <-w.stopCh:
			res.Wipe()
			return false
		case <-ctx.Done():
			res.Wipe()
			return false
		}
	}
	return true
}

func (w *Worker) generate(r request) *Generated {
	length := r.length
	if length > w.maxLen {
		length = w.maxLen
	}
	if length < 0 || len(w.alphabet) == 0 {
		length = 0
	}

	res := &Generated{Requested: r.caps}
	buf := make([]rune, length)
	n, failed, err := w.gen.Generate(buf, r.caps, w.alphabet, w.allowDuplicates)
	res.Failed = failed
	res.Err = err
	if err != nil || failed != entropy.CapNone {
		security.WipeRunes(buf)
		if err != nil {
			w.logger.Warn("generate failed", "error", err)
		} else {
			w.logger.Warn("generate failed", "failed", failed.String())
		}
		return res
	}
	res.Password = buf[:n]
	return res
}
