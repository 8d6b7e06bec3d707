package recall

import "fmt"

// Settings are the runtime parameters for recall tracking, with the same
// defaults and bounds the server-side configuration exposes.
type Settings struct {
	// TrackRecall enables recall tracking. Disabled by default: even the
	// sampling bookkeeping is not free.
	TrackRecall bool

	// SampleRate samples every Nth query for ground-truth estimation.
	// Higher values mean less frequent sampling, lower overhead.
	SampleRate int

	// MaxSamples caps the number of sampled queries folded into one index's
	// statistics; once reached, further queries are counted but not sampled.
	MaxSamples int
}

// Default settings and bounds.
const (
	DefaultSampleRate = 100
	MinSampleRate     = 1
	MaxSampleRate     = 10000

	DefaultMaxSamples = 10000
	MinMaxSamples     = 100
	MaxMaxSamples     = 1000000
)

// DefaultSettings returns the default recall-tracking parameters.
func DefaultSettings() Settings {
	return Settings{
		TrackRecall: false,
		SampleRate:  DefaultSampleRate,
		MaxSamples:  DefaultMaxSamples,
	}
}

// Validate checks the settings against their documented bounds.
func (s Settings) Validate() error {
	if s.SampleRate < MinSampleRate || s.SampleRate > MaxSampleRate {
		return fmt.Errorf("recall: sample rate %d out of range [%d, %d]", s.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if s.MaxSamples < MinMaxSamples || s.MaxSamples > MaxMaxSamples {
		return fmt.Errorf("recall: max samples %d out of range [%d, %d]", s.MaxSamples, MinMaxSamples, MaxMaxSamples)
	}
	return nil
}
