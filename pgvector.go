package pgvector

import (
	"sync"

	"github.com/binarycleric/pgvector/mempool"
	"github.com/binarycleric/pgvector/recall"
)

type options struct {
	logger         *Logger
	poolOptions    []mempool.Option
	recallOptions  []recall.Option
	recallSettings recall.Settings
}

// Option configures Init.
type Option func(*options)

// WithLogger sets the logger shared by the pool and the recall tracker.
//
// If nil is passed, the default text logger is used.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOffHeapPool backs the process-wide pool with an anonymous memory
// mapping, keeping the arena out of GC scans.
func WithOffHeapPool() Option {
	return func(o *options) {
		o.poolOptions = append(o.poolOptions, mempool.WithOffHeap())
	}
}

// WithRecallSettings sets the recall-tracking parameters. Init validates
// them against their documented bounds.
func WithRecallSettings(s recall.Settings) Option {
	return func(o *options) {
		o.recallSettings = s
	}
}

// WithRecallOptions passes additional options (distance function, scan rate,
// scan parallelism) through to the recall tracker.
func WithRecallOptions(opts ...recall.Option) Option {
	return func(o *options) {
		o.recallOptions = append(o.recallOptions, opts...)
	}
}

var (
	initMu  sync.Mutex
	tracker *recall.Tracker
)

// Init initializes the process-wide state: the tuple memory pool registry
// and the recall tracker. It is idempotent; a second call is a no-op and
// keeps the first call's configuration.
func Init(opts ...Option) error {
	o := options{
		logger:         NewLogger(nil),
		recallSettings: recall.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.recallSettings.Validate(); err != nil {
		return err
	}

	initMu.Lock()
	defer initMu.Unlock()

	poolOpts := append([]mempool.Option{mempool.WithLogger(o.logger.Logger)}, o.poolOptions...)
	if err := mempool.InitGlobal(poolOpts...); err != nil {
		return err
	}

	if tracker == nil {
		trackerOpts := append([]recall.Option{
			recall.WithLogger(o.logger.Logger),
			recall.WithSettings(o.recallSettings),
		}, o.recallOptions...)
		tracker = recall.NewTracker(trackerOpts...)
		o.logger.Debug("recall tracking initialized",
			"enabled", o.recallSettings.TrackRecall,
			"sample_rate", o.recallSettings.SampleRate)
	}

	return nil
}

// Shutdown destroys the process-wide pool and drops the recall tracker.
// Buffers borrowed from the pool are invalid afterwards. Idempotent.
func Shutdown() {
	initMu.Lock()
	defer initMu.Unlock()

	mempool.CleanupGlobal()
	tracker = nil
}

// TuplePool returns the process-wide tuple pool, or nil before Init. A nil
// pool still services Alloc/Release by falling back to the regular
// allocator.
func TuplePool() *mempool.Pool {
	return mempool.Global()
}

// Recall returns the process-wide recall tracker, or nil before Init.
func Recall() *recall.Tracker {
	initMu.Lock()
	defer initMu.Unlock()
	return tracker
}
