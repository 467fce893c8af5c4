package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bleeptalk/animalese/voice"
)

// Config holds the scheduler's tunables.
type Config struct {
	// MaxVoices is the ceiling on concurrently live (starting or playing)
	// instances. Submissions beyond it preempt the oldest live instance.
	MaxVoices int

	// FadeIn is the minimum fade-in applied to every instance, whatever the
	// request asked for. Mandatory: any instance may later need an abrupt
	// stop, and only a faded start keeps that stop click-free.
	FadeIn time.Duration

	// FadeOut is the ramp used for preemption and cancellation.
	FadeOut time.Duration
}

// DefaultConfig returns the stock scheduler tuning: eight voices, 5ms in,
// 10ms out.
func DefaultConfig() Config {
	return Config{
		MaxVoices: 8,
		FadeIn:    5 * time.Millisecond,
		FadeOut:   10 * time.Millisecond,
	}
}

// Stats counts scheduler activity since construction.
type Stats struct {
	Submitted int // requests admitted
	Rejected  int // requests refused (empty buffer, closed)
	Preempted int // instances faded early to make room
	Finished  int // instances reclaimed
}

// Scheduler admits play requests against a bounded set of playback slots.
// It owns the instance table and is the only component that mutates
// instance state; a single mutex covers the table because admissions arrive
// from the synthesis path while completions arrive on the sink's timing.
type Scheduler struct {
	sink Sink
	cfg  Config

	mu        sync.Mutex
	instances []*instance // oldest first
	nextID    uint64
	stats     Stats
	closed    bool
}

// NewScheduler creates a scheduler playing through the given sink. Zero or
// negative config fields fall back to the defaults.
func NewScheduler(sink Sink, cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.MaxVoices <= 0 {
		cfg.MaxVoices = def.MaxVoices
	}
	if cfg.FadeIn <= 0 {
		cfg.FadeIn = def.FadeIn
	}
	if cfg.FadeOut <= 0 {
		cfg.FadeOut = def.FadeOut
	}
	return &Scheduler{sink: sink, cfg: cfg}
}

// Submit schedules one play request. Requests with an empty buffer are
// rejected before touching the instance table. When the table is at the
// ceiling the oldest live instance is preempted into FadingOut first;
// saturation is handled, never reported as an error.
func (s *Scheduler) Submit(req voice.PlayRequest) error {
	if req.Buffer.Empty() {
		s.mu.Lock()
		s.stats.Rejected++
		s.mu.Unlock()
		return ErrEmptyBuffer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.stats.Rejected++
		return ErrSchedulerClosed
	}

	s.reapLocked(time.Now())

	for s.liveCountLocked() >= s.cfg.MaxVoices {
		if !s.preemptOldestLocked() {
			break
		}
	}

	fadeIn := req.FadeIn
	if fadeIn < s.cfg.FadeIn {
		fadeIn = s.cfg.FadeIn
	}

	handle, err := s.sink.Start(StartSpec{
		Buffer: req.Buffer,
		Rate:   req.Rate,
		Volume: req.Volume,
		FadeIn: fadeIn,
		Limit:  req.Limit,
	})
	if err != nil {
		s.stats.Rejected++
		return fmt.Errorf("starting instance: %w", err)
	}

	s.nextID++
	now := time.Now()
	s.instances = append(s.instances, &instance{
		id:        s.nextID,
		handle:    handle,
		state:     StateStarting,
		startedAt: now,
		fadeInEnd: now.Add(fadeIn),
	})
	s.stats.Submitted++
	return nil
}

// StopAll drives every live instance into FadingOut. Nothing is ever cut to
// Finished directly.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range s.instances {
		if in.live() {
			s.fadeOutLocked(in)
		}
	}
}

// Reap promotes instances past their fade-in, retires instances the sink has
// finished, and returns how many were reclaimed.
func (s *Scheduler) Reap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reapLocked(time.Now())
}

// LiveCount returns the number of starting or playing instances.
func (s *Scheduler) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked(time.Now())
	return s.liveCountLocked()
}

// FadingCount returns the number of instances currently ramping to silence.
func (s *Scheduler) FadingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, in := range s.instances {
		if in.state == StateFadingOut {
			n++
		}
	}
	return n
}

// States returns a snapshot of every tracked instance state, oldest first.
// Finished instances are gone by the time they would appear here.
func (s *Scheduler) States() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]State, len(s.instances))
	for i, in := range s.instances {
		out[i] = in.state
	}
	return out
}

// Stats returns a copy of the activity counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close fades out everything and rejects further submissions. The sink is
// left open; whoever created it closes it.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, in := range s.instances {
		if in.live() {
			s.fadeOutLocked(in)
		}
	}
	return nil
}

// liveCountLocked counts starting and playing instances.
func (s *Scheduler) liveCountLocked() int {
	n := 0
	for _, in := range s.instances {
		if in.live() {
			n++
		}
	}
	return n
}

// preemptOldestLocked fades the oldest live instance and reports whether one
// was found.
func (s *Scheduler) preemptOldestLocked() bool {
	for _, in := range s.instances {
		if in.live() {
			s.fadeOutLocked(in)
			s.stats.Preempted++
			return true
		}
	}
	return false
}

// fadeOutLocked moves one instance into FadingOut through the transition
// table and tells the sink to ramp it down.
func (s *Scheduler) fadeOutLocked(in *instance) {
	if !s.transitionLocked(in, StateFadingOut) {
		return
	}
	if err := s.sink.SetFadeOut(in.handle, s.cfg.FadeOut); err != nil {
		log.Warn("fade-out request failed", "instance", in.id, "err", err)
	}
}

// reapLocked advances instance lifecycles: Starting instances past their
// fade-in window become Playing, and instances the sink reports finished are
// walked through FadingOut (the sink already rendered the tail ramp) to
// Finished and dropped from the table.
func (s *Scheduler) reapLocked(now time.Time) int {
	kept := s.instances[:0]
	reclaimed := 0
	for _, in := range s.instances {
		if in.state == StateStarting && now.After(in.fadeInEnd) {
			s.transitionLocked(in, StatePlaying)
		}

		if s.sink.IsFinished(in.handle) {
			if in.live() {
				// Natural end: the sink's tail envelope has already faded
				// the audio; the lifecycle still passes through FadingOut.
				s.transitionLocked(in, StateFadingOut)
			}
			if in.state == StateFadingOut {
				s.transitionLocked(in, StateFinished)
			}
		}

		if in.state == StateFinished {
			s.stats.Finished++
			reclaimed++
			continue
		}
		kept = append(kept, in)
	}
	// Zero the freed tail so reclaimed instances can be collected.
	for i := len(kept); i < len(s.instances); i++ {
		s.instances[i] = nil
	}
	s.instances = kept
	return reclaimed
}

// transitionLocked applies one lifecycle step, refusing illegal ones.
func (s *Scheduler) transitionLocked(in *instance, to State) bool {
	if !canTransition(in.state, to) {
		log.Error("illegal instance transition",
			"instance", in.id, "from", in.state, "to", to)
		return false
	}
	in.state = to
	return true
}
