package supercollider

import "time"

// WorkerMax is the largest worker index the interpreter will ever hand to a
// Job, ported from the source's boost::uint_fast8_t thread_index width.
// It bounds used-helper-thread clamping at InstallQueue time; it does not
// limit the size of the Go int used to store a worker index.
const WorkerMax = 255

// MaxActivation documents the ceiling the source's 16-bit activation_count
// preserved. Go's Interpreter widens the counter to atomic.Uint32 (see
// DESIGN.md's Open Question decision) but keeps this constant so callers
// who want the original limit can assert against it themselves.
const MaxActivation = 1<<16 - 1

// Config holds the tunable parameters of an Interpreter.
// Use DefaultConfig for production-ready defaults, or override individual
// fields before passing to NewInterpreter.
type Config struct {
	// ThreadCount is the number of workers (master + helpers) used for a
	// tick. Clamped to at least 1 by NewInterpreter. Default: 1.
	ThreadCount int

	// FIFOCapacity is the minimum capacity reserved for the ready queue.
	// InstallQueue rounds this up to the next power of two and further up
	// to at least the installed graph's TotalNodeCount, so a correctly
	// sized installation never observes a full-queue failure. Default: 1024.
	FIFOCapacity int

	// HelperWakeTimeout is the tick duration, measured by RunTick from
	// waking the helpers until the tick has finished, above which RunTick
	// logs a warning after the tick. It never aborts a tick — it exists
	// purely for operational visibility.
	// Default: 0 (disabled).
	HelperWakeTimeout time.Duration
}

// Option is a functional-option type for NewInterpreterWithOptions.
type Option func(*Config)

// DefaultConfig returns a Config populated with production-ready defaults:
//   - ThreadCount:       1
//   - FIFOCapacity:      1024
//   - HelperWakeTimeout: 0 (disabled)
func DefaultConfig() Config {
	return Config{
		ThreadCount:  1,
		FIFOCapacity: 1024,
	}
}

// WithThreadCount returns an Option that sets the configured thread count.
func WithThreadCount(n int) Option {
	return func(c *Config) { c.ThreadCount = n }
}

// WithFIFOCapacity returns an Option that sets the minimum FIFO capacity.
func WithFIFOCapacity(n int) Option {
	return func(c *Config) { c.FIFOCapacity = n }
}

// WithHelperWakeTimeout returns an Option that sets the diagnostic wake
// timeout described on Config.HelperWakeTimeout.
func WithHelperWakeTimeout(d time.Duration) Option {
	return func(c *Config) { c.HelperWakeTimeout = d }
}
