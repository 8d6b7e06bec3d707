package recall

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/binarycleric/pgvector/distance"
)

// Tracker accumulates recall statistics per index. Safe for concurrent use.
type Tracker struct {
	mu              sync.Mutex
	settings        Settings
	logger          *slog.Logger
	dist            distance.Func
	scanLimiter     *rate.Limiter
	scanParallelism int
	queryCounter    int64
	entries         map[string]*IndexStats
	now             func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSettings sets the tracking parameters. Call Validate on them first;
// NewTracker does not.
func WithSettings(s Settings) Option {
	return func(t *Tracker) {
		t.settings = s
	}
}

// WithLogger sets the logger for scan diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDistanceFunc sets the distance function used for ground-truth scans.
// It must be the same metric the index searches with, or the scan radius
// means nothing. Defaults to squared L2.
func WithDistanceFunc(fn distance.Func) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.dist = fn
		}
	}
}

// WithScanRate caps ground-truth scans at scansPerSec. Sampled queries that
// exceed the rate keep the conservative estimate instead of scanning.
// Zero or negative means unlimited.
func WithScanRate(scansPerSec float64) Option {
	return func(t *Tracker) {
		if scansPerSec > 0 {
			t.scanLimiter = rate.NewLimiter(rate.Limit(scansPerSec), 1)
		}
	}
}

// WithScanParallelism sets how many source blocks are scanned concurrently.
// Defaults to GOMAXPROCS.
func WithScanParallelism(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.scanParallelism = n
		}
	}
}

// NewTracker creates a recall tracker. With default settings tracking is
// disabled and Observe is a cheap no-op; enable it via WithSettings.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		settings:        DefaultSettings(),
		logger:          slog.Default(),
		dist:            distance.SquaredL2,
		scanParallelism: runtime.GOMAXPROCS(0),
		entries:         make(map[string]*IndexStats),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe records a finished query against the named index. Every call
// updates the query and result counters; every SampleRate-th call across the
// tracker additionally estimates ground truth for this query by scanning
// src within the sample's k-th distance.
//
// src may be nil when the backing vectors are unavailable; sampled queries
// then use the conservative estimate (expected = limit). Scan failures are
// logged, never surfaced: recall tracking must not fail queries.
func (t *Tracker) Observe(ctx context.Context, index string, src VectorSource, query []float32, sample *QuerySample) {
	if !t.settings.TrackRecall || sample == nil {
		return
	}

	t.mu.Lock()
	entry, ok := t.entries[index]
	if !ok {
		entry = &IndexStats{LastUpdated: t.now()}
		t.entries[index] = entry
	}

	entry.TotalQueries++
	entry.TotalResultsReturned += int64(sample.resultCount)

	t.queryCounter++
	sampled := t.queryCounter%int64(t.settings.SampleRate) == 0 &&
		entry.SampledQueries < int64(t.settings.MaxSamples)
	if !sampled {
		t.mu.Unlock()
		return
	}
	entry.SampledQueries++
	t.mu.Unlock()

	estimatedExpected := int64(sample.limit)
	estimatedCorrect := int64(sample.resultCount)

	if sample.maxDistance > 0 && src != nil && t.allowScan() {
		within, exceeded, err := t.countWithin(ctx, src, query, sample.maxDistance, sample.limit)
		switch {
		case err != nil:
			t.logger.Warn("recall ground-truth scan failed", "index", index, "error", err)
		case exceeded:
			// More candidates than the query asked for: a conservative
			// lower bound on the expected set.
			estimatedExpected = int64(sample.limit) + 1
		default:
			// Complete expected set: score the returned IDs exactly.
			estimatedExpected = int64(within.GetCardinality())
			estimatedCorrect = int64(sample.results.AndCardinality(within))
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry.CorrectMatches += estimatedCorrect
	entry.TotalExpected += estimatedExpected
	if entry.TotalQueries > 0 {
		entry.AvgResultsPerQuery = float64(entry.TotalResultsReturned) / float64(entry.TotalQueries)
	}
	if entry.TotalExpected > 0 {
		entry.CurrentRecall = float64(entry.CorrectMatches) / float64(entry.TotalExpected)
	}
	entry.LastUpdated = t.now()
}

func (t *Tracker) allowScan() bool {
	if t.scanLimiter == nil {
		return true
	}
	if t.scanLimiter.Allow() {
		return true
	}
	t.logger.Debug("recall ground-truth scan throttled")
	return false
}

// Current returns the current recall estimate for an index. The second
// result is false when nothing has been sampled for it yet.
func (t *Tracker) Current(index string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[index]
	if !ok || entry.TotalExpected == 0 {
		return 0, false
	}
	return entry.CurrentRecall, true
}

// Reset clears the statistics of one index, keeping the entry.
func (t *Tracker) Reset(index string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[index]; ok {
		*entry = IndexStats{LastUpdated: t.now()}
	}
}

// ResetAll drops all per-index statistics.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*IndexStats)
}

// Snapshot returns the statistics of every tracked index, sorted by name.
func (t *Tracker) Snapshot() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]Row, 0, len(t.entries))
	for name, entry := range t.entries {
		rows = append(rows, Row{Index: name, IndexStats: *entry})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index })
	return rows
}
