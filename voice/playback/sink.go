// Package playback schedules concurrently sounding sprite instances over an
// audio sink, bounding how many sound at once and guaranteeing that every
// instance fades in and fades out — never hard-cuts — no matter how fast new
// requests arrive.
package playback

import (
	"errors"
	"time"

	"github.com/bleeptalk/animalese/voice"
)

// Common errors for the playback layer.
var (
	// ErrEmptyBuffer is returned for a play request with no audio.
	ErrEmptyBuffer = errors.New("play request has empty buffer")
	// ErrSinkClosed is returned when the sink can no longer start sounds.
	ErrSinkClosed = errors.New("audio sink is closed")
	// ErrUnknownHandle is returned for operations on a handle the sink does
	// not recognize.
	ErrUnknownHandle = errors.New("unknown playback handle")
	// ErrSchedulerClosed is returned when submitting to a closed scheduler.
	ErrSchedulerClosed = errors.New("scheduler is closed")
)

// Handle identifies one sound started on a Sink.
type Handle uint64

// StartSpec describes one sound for Sink.Start.
type StartSpec struct {
	Buffer *voice.SampleBuffer // shared read-only audio
	Rate   float64             // playback-rate multiplier
	Volume float64             // amplitude multiplier [0, 1]
	FadeIn time.Duration       // fade-in ramp applied from the first frame
	Limit  time.Duration       // truncate playback after this long (0 = full)
}

// Sink is the playback device abstraction. The production implementation
// renders through an oto context; tests use MockSink. Implementations must
// be safe for concurrent use: the scheduler calls from the synthesis path
// while sounds complete on the device's own timing.
type Sink interface {
	// Start begins playing a sound and returns its handle. The sink applies
	// the fade-in ramp itself so amplitude is continuous from frame zero.
	Start(spec StartSpec) (Handle, error)

	// SetFadeOut begins an amplitude ramp to silence over the given
	// duration, after which the sound is finished. Calling it again on a
	// sound already fading is a no-op.
	SetFadeOut(h Handle, fade time.Duration) error

	// IsFinished reports whether the sound has fully stopped.
	IsFinished(h Handle) bool

	// Close stops all sounds and releases the device.
	Close() error
}
