package voice

import "time"

// PlayRequest asks the playback layer to sound one sprite. Requests are
// transient: built per symbol, consumed by the scheduler, and discarded once
// the resulting instance finishes or is faded out early.
type PlayRequest struct {
	Buffer *SampleBuffer // shared read-only sprite audio
	Rate   float64       // effective playback-rate multiplier
	Volume float64       // amplitude multiplier [0, 1]

	// FadeIn is a requested fade-in length. The scheduler enforces its own
	// minimum regardless, so instances can always be stopped early without
	// a discontinuity click.
	FadeIn time.Duration

	// Limit truncates playback to at most this duration (a tail fade is
	// still applied at the cut). Zero means play the whole buffer.
	Limit time.Duration
}

// Submitter accepts play requests from the engine. Implemented by
// playback.Scheduler; tests substitute an in-memory recorder.
type Submitter interface {
	// Submit schedules one request for playback.
	Submit(req PlayRequest) error

	// StopAll fades out everything currently sounding.
	StopAll()
}
