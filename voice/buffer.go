package voice

import (
	"math"
	"time"
)

// SampleBuffer holds decoded mono audio frames at their native sample rate.
// Buffers are loaded once and shared read-only between every playback
// instance that references them; nothing mutates the frame data after load.
type SampleBuffer struct {
	Frames     []float32 // interleaved frames (mono: one sample per frame)
	SampleRate int       // native sample rate in Hz
	Channels   int       // channel count (1 for all bundled assets)
}

// Empty reports whether the buffer carries no audio.
func (b *SampleBuffer) Empty() bool {
	return b == nil || len(b.Frames) == 0 || b.SampleRate <= 0
}

// FrameCount returns the number of frames in the buffer.
func (b *SampleBuffer) FrameCount() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Frames) / b.Channels
}

// Duration returns the playback duration at the native rate.
func (b *SampleBuffer) Duration() time.Duration {
	if b.Empty() {
		return 0
	}
	frames := b.FrameCount()
	return time.Duration(float64(frames) / float64(b.SampleRate) * float64(time.Second))
}

// Slice returns a view of the buffer covering [start, start+length).
// The view shares the underlying frame data; no audio is copied. Ranges
// past the end of the buffer are clamped, which keeps sprite-sheet slicing
// tolerant of sheets that end mid-sprite.
func (b *SampleBuffer) Slice(start, length time.Duration) *SampleBuffer {
	if b.Empty() || length <= 0 {
		return &SampleBuffer{SampleRate: b.SampleRate, Channels: b.Channels}
	}

	ch := b.Channels
	if ch <= 0 {
		ch = 1
	}
	frameAt := func(d time.Duration) int {
		f := int(math.Round(d.Seconds() * float64(b.SampleRate)))
		if f < 0 {
			f = 0
		}
		if f > b.FrameCount() {
			f = b.FrameCount()
		}
		return f
	}

	lo := frameAt(start) * ch
	hi := frameAt(start+length) * ch
	return &SampleBuffer{
		Frames:     b.Frames[lo:hi],
		SampleRate: b.SampleRate,
		Channels:   ch,
	}
}
