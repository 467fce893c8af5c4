package playback

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/bleeptalk/animalese/voice"
)

// naturalTailFade is the envelope applied to the final frames of every sound
// so a sprite that runs to its natural end lands on silence, not a cliff.
const naturalTailFade = 5 * time.Millisecond

// reapInterval is how often the janitor sweeps finished players.
const reapInterval = 50 * time.Millisecond

// OtoSink renders sounds through an oto audio context. Each Start creates an
// oto player reading from a renderer that resamples, scales, and envelopes
// the shared sample buffer on the fly, so one decoded sprite sheet serves any
// number of simultaneous instances.
type OtoSink struct {
	ctx        *oto.Context
	sampleRate int

	mu     sync.Mutex
	next   Handle
	sounds map[Handle]*otoSound
	closed bool

	done chan struct{}
}

type otoSound struct {
	player   *oto.Player
	renderer *renderReader
}

// NewOtoSink opens the audio device at the given output rate, mono float32.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	// Platform-specific buffer size adjustments
	switch runtime.GOOS {
	case "darwin":
		options.BufferSize = time.Millisecond * 100
	case "windows":
		options.BufferSize = time.Millisecond * 80
	default:
		options.BufferSize = time.Millisecond * 50
	}

	log.Debug("initializing audio context",
		"sample_rate", options.SampleRate,
		"buffer_size", options.BufferSize)

	ctx, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}

	select {
	case <-readyChan:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("audio context initialization timeout")
	}

	s := &OtoSink{
		ctx:        ctx,
		sampleRate: sampleRate,
		sounds:     make(map[Handle]*otoSound),
		done:       make(chan struct{}),
	}
	go s.janitor()
	return s, nil
}

// Start begins rendering one sound and returns its handle.
func (s *OtoSink) Start(spec StartSpec) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSinkClosed
	}
	if spec.Buffer.Empty() {
		return 0, ErrEmptyBuffer
	}

	r := newRenderReader(spec, s.sampleRate)
	player := s.ctx.NewPlayer(r)
	player.Play()

	s.next++
	h := s.next
	s.sounds[h] = &otoSound{player: player, renderer: r}
	return h, nil
}

// SetFadeOut starts ramping the sound to silence over the given duration.
func (s *OtoSink) SetFadeOut(h Handle, fade time.Duration) error {
	s.mu.Lock()
	snd, ok := s.sounds[h]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}
	snd.renderer.beginFadeOut(fade)
	return nil
}

// IsFinished reports whether the sound's renderer has drained and the device
// has played out what it buffered.
func (s *OtoSink) IsFinished(h Handle) bool {
	s.mu.Lock()
	snd, ok := s.sounds[h]
	s.mu.Unlock()
	if !ok {
		return true
	}
	return snd.renderer.drained() && !snd.player.IsPlaying()
}

// Close stops every sound and releases the device. The oto context has no
// Close in v3; it is reclaimed when garbage collected.
func (s *OtoSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sounds := s.sounds
	s.sounds = make(map[Handle]*otoSound)
	s.mu.Unlock()

	close(s.done)
	for _, snd := range sounds {
		if err := snd.player.Close(); err != nil {
			log.Warn("closing player", "err", err)
		}
	}
	return nil
}

// janitor sweeps finished sounds so their players are closed even when the
// scheduler never asks after them again.
func (s *OtoSink) janitor() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			for h, snd := range s.sounds {
				if snd.renderer.drained() && !snd.player.IsPlaying() {
					if err := snd.player.Close(); err != nil {
						log.Warn("closing player", "handle", h, "err", err)
					}
					delete(s.sounds, h)
				}
			}
			s.mu.Unlock()
		}
	}
}

// renderReader produces the float32 little-endian stream for one sound. It
// resamples the source to the output rate scaled by the pitch rate (linear
// interpolation), applies the volume, and shapes the fade-in ramp, the
// natural tail ramp, and any forced fade-out. All envelopes multiply, so a
// preemption during fade-in still lands on silence smoothly.
type renderReader struct {
	src     *voice.SampleBuffer
	step    float64 // source frames advanced per output frame
	volume  float64
	outRate int

	totalFrames  int // planned output length before any forced fade
	fadeInFrames int
	tailStart    int // first frame of the natural tail ramp

	mu         sync.Mutex
	frame      int // next output frame index
	fadeStart  int // first frame of the forced fade, -1 when none
	fadeFrames int
	eof        bool
}

func newRenderReader(spec StartSpec, outRate int) *renderReader {
	rate := spec.Rate
	if rate <= 0 {
		rate = 1.0
	}
	step := rate * float64(spec.Buffer.SampleRate) / float64(outRate)

	total := int(float64(spec.Buffer.FrameCount()) / step)
	if spec.Limit > 0 {
		limitFrames := int(spec.Limit.Seconds() * float64(outRate))
		if limitFrames < total {
			total = limitFrames
		}
	}

	fadeIn := int(spec.FadeIn.Seconds() * float64(outRate))
	if fadeIn > total {
		fadeIn = total
	}

	tailFrames := int(naturalTailFade.Seconds() * float64(outRate))
	tailStart := total - tailFrames
	if tailStart < fadeIn {
		tailStart = fadeIn
	}

	return &renderReader{
		src:          spec.Buffer,
		step:         step,
		volume:       spec.Volume,
		outRate:      outRate,
		totalFrames:  total,
		fadeInFrames: fadeIn,
		tailStart:    tailStart,
		fadeStart:    -1,
	}
}

// beginFadeOut schedules a forced ramp to silence starting at the current
// playback position. A second call while already fading is ignored.
func (r *renderReader) beginFadeOut(fade time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fadeStart >= 0 || r.eof {
		return
	}
	r.fadeStart = r.frame
	r.fadeFrames = int(fade.Seconds() * float64(r.outRate))
	if r.fadeFrames < 1 {
		r.fadeFrames = 1
	}
}

// drained reports whether the renderer has emitted its last frame.
func (r *renderReader) drained() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eof
}

func (r *renderReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.eof {
		return 0, io.EOF
	}

	frames := len(p) / 4
	n := 0
	for i := 0; i < frames; i++ {
		if r.frame >= r.totalFrames {
			r.eof = true
			break
		}
		if r.fadeStart >= 0 && r.frame >= r.fadeStart+r.fadeFrames {
			r.eof = true
			break
		}

		sample := r.sampleAt(float64(r.frame) * r.step)
		sample *= float32(r.volume)
		sample *= r.gainAt(r.frame)

		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(sample))
		n += 4
		r.frame++
	}

	if n == 0 {
		r.eof = true
		return 0, io.EOF
	}
	return n, nil
}

// gainAt evaluates the envelope for one output frame.
func (r *renderReader) gainAt(frame int) float32 {
	gain := 1.0

	if r.fadeInFrames > 0 && frame < r.fadeInFrames {
		gain *= float64(frame) / float64(r.fadeInFrames)
	}

	if tail := r.totalFrames - r.tailStart; tail > 0 && frame >= r.tailStart {
		gain *= float64(r.totalFrames-frame) / float64(tail)
	}

	if r.fadeStart >= 0 && frame >= r.fadeStart {
		gain *= 1.0 - float64(frame-r.fadeStart)/float64(r.fadeFrames)
	}

	if gain < 0 {
		gain = 0
	}
	return float32(gain)
}

// sampleAt reads the source at a fractional frame position, interpolating
// between neighbors and mixing multi-channel sources down to mono.
func (r *renderReader) sampleAt(pos float64) float32 {
	i := int(pos)
	if i >= r.src.FrameCount() {
		return 0
	}
	frac := float32(pos - float64(i))

	a := r.monoFrame(i)
	b := a
	if i+1 < r.src.FrameCount() {
		b = r.monoFrame(i + 1)
	}
	return a + (b-a)*frac
}

func (r *renderReader) monoFrame(i int) float32 {
	ch := r.src.Channels
	if ch <= 1 {
		return r.src.Frames[i]
	}
	var sum float32
	for c := 0; c < ch; c++ {
		sum += r.src.Frames[i*ch+c]
	}
	return sum / float32(ch)
}
