package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/bleeptalk/animalese/voice"
)

// testBuffer returns a short mono buffer for scheduling tests.
func testBuffer() *voice.SampleBuffer {
	return &voice.SampleBuffer{
		Frames:     make([]float32, 4410), // 100ms at 44.1kHz
		SampleRate: 44100,
		Channels:   1,
	}
}

func testRequest() voice.PlayRequest {
	return voice.PlayRequest{Buffer: testBuffer(), Rate: 1.0, Volume: 0.65}
}

// TestSchedulerSubmit verifies basic admission.
func TestSchedulerSubmit(t *testing.T) {
	sink := NewMockSink()
	s := NewScheduler(sink, DefaultConfig())

	if err := s.Submit(testRequest()); err != nil {
		t.Fatalf("Submit() error = %v, want nil", err)
	}
	if got := s.LiveCount(); got != 1 {
		t.Errorf("LiveCount() = %d, want 1", got)
	}
	if got := sink.StartedCount(); got != 1 {
		t.Errorf("sink started %d sounds, want 1", got)
	}
}

// TestSchedulerRejectsEmptyBuffer verifies empty requests never reach the sink.
func TestSchedulerRejectsEmptyBuffer(t *testing.T) {
	tests := []struct {
		name string
		buf  *voice.SampleBuffer
	}{
		{"nil buffer", nil},
		{"no frames", &voice.SampleBuffer{SampleRate: 44100, Channels: 1}},
		{"no sample rate", &voice.SampleBuffer{Frames: make([]float32, 10), Channels: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewMockSink()
			s := NewScheduler(sink, DefaultConfig())

			err := s.Submit(voice.PlayRequest{Buffer: tt.buf, Rate: 1.0, Volume: 1.0})
			if !errors.Is(err, ErrEmptyBuffer) {
				t.Errorf("Submit() error = %v, want ErrEmptyBuffer", err)
			}
			if got := sink.StartedCount(); got != 0 {
				t.Errorf("sink started %d sounds, want 0", got)
			}
			if got := s.Stats().Rejected; got != 1 {
				t.Errorf("Stats().Rejected = %d, want 1", got)
			}
		})
	}
}

// TestSchedulerCeilingPreemptsOldest verifies that a burst far past the
// ceiling keeps exactly MaxVoices instances live and fades the rest, oldest
// first, with nothing hard-cut and nothing refused.
func TestSchedulerCeilingPreemptsOldest(t *testing.T) {
	sink := NewMockSink()
	s := NewScheduler(sink, Config{MaxVoices: 8, FadeIn: time.Hour, FadeOut: 10 * time.Millisecond})

	for i := 0; i < 20; i++ {
		if err := s.Submit(testRequest()); err != nil {
			t.Fatalf("Submit() #%d error = %v, want nil", i, err)
		}
	}

	if got := s.LiveCount(); got != 8 {
		t.Errorf("LiveCount() = %d, want 8", got)
	}
	if got := s.FadingCount(); got != 12 {
		t.Errorf("FadingCount() = %d, want 12", got)
	}

	stats := s.Stats()
	if stats.Submitted != 20 {
		t.Errorf("Stats().Submitted = %d, want 20", stats.Submitted)
	}
	if stats.Preempted != 12 {
		t.Errorf("Stats().Preempted = %d, want 12", stats.Preempted)
	}
	if stats.Rejected != 0 {
		t.Errorf("Stats().Rejected = %d, want 0", stats.Rejected)
	}

	// The 12 preempted instances must be the 12 oldest.
	states := s.States()
	if len(states) != 20 {
		t.Fatalf("len(States()) = %d, want 20", len(states))
	}
	for i, st := range states {
		want := StateFadingOut
		if i >= 12 {
			want = StateStarting
		}
		if st != want {
			t.Errorf("States()[%d] = %v, want %v", i, st, want)
		}
	}
}

// TestSchedulerPreemptionFadesViaSink verifies preemption reaches the sink as
// a fade, never as a stop.
func TestSchedulerPreemptionFadesViaSink(t *testing.T) {
	sink := NewMockSink()
	fadeOut := 10 * time.Millisecond
	s := NewScheduler(sink, Config{MaxVoices: 1, FadeIn: time.Hour, FadeOut: fadeOut})

	if err := s.Submit(testRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := s.Submit(testRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	snd, ok := sink.Sound(1)
	if !ok {
		t.Fatal("sink has no record of handle 1")
	}
	if !snd.Fading {
		t.Error("oldest sound not fading after preemption")
	}
	if snd.FadeOut != fadeOut {
		t.Errorf("fade-out duration = %v, want %v", snd.FadeOut, fadeOut)
	}
}

// TestSchedulerFadeInFloor verifies every start carries at least the
// configured fade-in, while longer requests pass through.
func TestSchedulerFadeInFloor(t *testing.T) {
	tests := []struct {
		name      string
		requested time.Duration
		want      time.Duration
	}{
		{"zero request floored", 0, 5 * time.Millisecond},
		{"short request floored", time.Millisecond, 5 * time.Millisecond},
		{"long request kept", 20 * time.Millisecond, 20 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewMockSink()
			s := NewScheduler(sink, Config{MaxVoices: 8, FadeIn: 5 * time.Millisecond, FadeOut: 10 * time.Millisecond})

			req := testRequest()
			req.FadeIn = tt.requested
			if err := s.Submit(req); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}

			snd, ok := sink.Sound(1)
			if !ok {
				t.Fatal("sink has no record of handle 1")
			}
			if snd.Spec.FadeIn != tt.want {
				t.Errorf("fade-in = %v, want %v", snd.Spec.FadeIn, tt.want)
			}
		})
	}
}

// TestSchedulerStartingPromotion verifies instances leave Starting once the
// fade-in window has elapsed.
func TestSchedulerStartingPromotion(t *testing.T) {
	sink := NewMockSink()
	s := NewScheduler(sink, Config{MaxVoices: 8, FadeIn: time.Nanosecond, FadeOut: 10 * time.Millisecond})

	if err := s.Submit(testRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	s.Reap()

	states := s.States()
	if len(states) != 1 || states[0] != StatePlaying {
		t.Errorf("States() = %v, want [playing]", states)
	}
}

// TestSchedulerNaturalEndPassesThroughFade verifies a sound the sink reports
// finished is reclaimed, still walking the full lifecycle.
func TestSchedulerNaturalEndPassesThroughFade(t *testing.T) {
	sink := NewMockSink()
	s := NewScheduler(sink, DefaultConfig())

	if err := s.Submit(testRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	sink.Finish(1)

	if got := s.Reap(); got != 1 {
		t.Errorf("Reap() = %d, want 1", got)
	}
	if got := len(s.States()); got != 0 {
		t.Errorf("len(States()) = %d, want 0", got)
	}
	if got := s.Stats().Finished; got != 1 {
		t.Errorf("Stats().Finished = %d, want 1", got)
	}
}

// TestSchedulerStopAll verifies cancellation fades every live instance.
func TestSchedulerStopAll(t *testing.T) {
	sink := NewMockSink()
	s := NewScheduler(sink, Config{MaxVoices: 8, FadeIn: time.Hour, FadeOut: 10 * time.Millisecond})

	for i := 0; i < 5; i++ {
		if err := s.Submit(testRequest()); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	s.StopAll()

	if got := s.FadingCount(); got != 5 {
		t.Errorf("FadingCount() = %d, want 5", got)
	}
	if got := s.LiveCount(); got != 0 {
		t.Errorf("LiveCount() = %d, want 0", got)
	}

	// Fading instances drain and get reclaimed on the next sweep.
	sink.FinishFading()
	if got := s.Reap(); got != 5 {
		t.Errorf("Reap() = %d, want 5", got)
	}
}

// TestSchedulerFadingDoesNotBlockAdmission verifies instances ramping out do
// not hold playback slots against new arrivals.
func TestSchedulerFadingDoesNotBlockAdmission(t *testing.T) {
	sink := NewMockSink()
	s := NewScheduler(sink, Config{MaxVoices: 2, FadeIn: time.Hour, FadeOut: 10 * time.Millisecond})

	for i := 0; i < 2; i++ {
		if err := s.Submit(testRequest()); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	s.StopAll()

	for i := 0; i < 2; i++ {
		if err := s.Submit(testRequest()); err != nil {
			t.Fatalf("Submit() after StopAll error = %v", err)
		}
	}

	if got := s.LiveCount(); got != 2 {
		t.Errorf("LiveCount() = %d, want 2", got)
	}
	if got := s.Stats().Preempted; got != 0 {
		t.Errorf("Stats().Preempted = %d, want 0", got)
	}
}

// TestSchedulerSinkStartError verifies a sink failure surfaces to the caller.
func TestSchedulerSinkStartError(t *testing.T) {
	sink := NewMockSink()
	boom := errors.New("device gone")
	sink.SetStartError(boom)
	s := NewScheduler(sink, DefaultConfig())

	err := s.Submit(testRequest())
	if !errors.Is(err, boom) {
		t.Errorf("Submit() error = %v, want wrapped %v", err, boom)
	}
	if got := s.Stats().Rejected; got != 1 {
		t.Errorf("Stats().Rejected = %d, want 1", got)
	}
}

// TestSchedulerClose verifies a closed scheduler fades its instances and
// refuses new work.
func TestSchedulerClose(t *testing.T) {
	sink := NewMockSink()
	s := NewScheduler(sink, Config{MaxVoices: 8, FadeIn: time.Hour, FadeOut: 10 * time.Millisecond})

	if err := s.Submit(testRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if err := s.Submit(testRequest()); !errors.Is(err, ErrSchedulerClosed) {
		t.Errorf("Submit() after Close error = %v, want ErrSchedulerClosed", err)
	}
	if got := s.FadingCount(); got != 1 {
		t.Errorf("FadingCount() = %d, want 1", got)
	}
}

// TestSchedulerDefaultsApplied verifies zero config fields fall back.
func TestSchedulerDefaultsApplied(t *testing.T) {
	s := NewScheduler(NewMockSink(), Config{})
	def := DefaultConfig()
	if s.cfg != def {
		t.Errorf("effective config = %+v, want %+v", s.cfg, def)
	}
}
