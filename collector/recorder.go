package collector

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"
)

// Options configures a Recorder
type Options struct {
	// ExchangeCapacity is the number of exchanges to keep.
	// Default: 200
	ExchangeCapacity uint64
	// LogCapacity is the number of log records to keep.
	// Default: 500
	LogCapacity uint64
	// MaxBodySize is the maximum number of response body bytes kept per API exchange.
	// Default: 64KB
	MaxBodySize int
	// Logger receives debug lines for every observed request and response.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns default options for a Recorder
func DefaultOptions() Options {
	return Options{
		ExchangeCapacity: 200,
		LogCapacity:      500,
		MaxBodySize:      64 * 1024,
	}
}

// Recorder keeps the recent network traffic and log records of one test
// so they can be printed when the test fails.
type Recorder struct {
	exchanges *RingBuffer[Exchange]
	logs      *RingBuffer[slog.Record]
	options   Options
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[playwright.Request]Exchange
}

// NewRecorder creates a Recorder with default options
func NewRecorder() *Recorder {
	return NewRecorderWithOptions(DefaultOptions())
}

// NewRecorderWithOptions creates a Recorder. Zero fields fall back to the defaults.
func NewRecorderWithOptions(options Options) *Recorder {
	defaults := DefaultOptions()
	if options.ExchangeCapacity == 0 {
		options.ExchangeCapacity = defaults.ExchangeCapacity
	}
	if options.LogCapacity == 0 {
		options.LogCapacity = defaults.LogCapacity
	}
	if options.MaxBodySize == 0 {
		options.MaxBodySize = defaults.MaxBodySize
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		exchanges: NewRingBuffer[Exchange](options.ExchangeCapacity),
		logs:      NewRingBuffer[slog.Record](options.LogCapacity),
		options:   options,
		logger:    logger,
		pending:   make(map[playwright.Request]Exchange),
	}
}

// Add stores a finished exchange
func (r *Recorder) Add(e Exchange) {
	r.exchanges.Add(e)
}

// Exchanges returns all kept exchanges, oldest first
func (r *Recorder) Exchanges() []Exchange {
	return r.exchanges.All()
}

// ExchangesFrom returns the kept exchanges observed from source
func (r *Recorder) ExchangesFrom(source Source) []Exchange {
	return lo.Filter(r.exchanges.All(), func(e Exchange, _ int) bool {
		return e.Source == source
	})
}

// FailedExchanges returns kept exchanges that failed or got an error status
func (r *Recorder) FailedExchanges() []Exchange {
	return lo.Filter(r.exchanges.All(), func(e Exchange, _ int) bool {
		return e.Failed()
	})
}

// Pending returns the number of browser requests still waiting for a response
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Logs returns the kept log records, oldest first
func (r *Recorder) Logs() []slog.Record {
	return r.logs.All()
}

// Reset drops everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.pending = make(map[playwright.Request]Exchange)
	r.mu.Unlock()

	r.exchanges.Clear()
	r.logs.Clear()
}

// WriteSummary writes the last n log records and exchanges in a readable form
func (r *Recorder) WriteSummary(w io.Writer, n int) error {
	logs := r.logs.Last(uint64(n))
	exchanges := r.exchanges.Last(uint64(n))

	if _, err := fmt.Fprintf(w, "--- last %d log records\n", len(logs)); err != nil {
		return err
	}
	for _, rec := range logs {
		line := fmt.Sprintf("%s %-5s %s", rec.Time.Format("15:04:05.000"), rec.Level, rec.Message)
		rec.Attrs(func(attr slog.Attr) bool {
			line += " " + attr.String()
			return true
		})
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "--- last %d exchanges (%d failed)\n", len(exchanges), len(r.FailedExchanges())); err != nil {
		return err
	}
	for _, e := range exchanges {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
	return nil
}
