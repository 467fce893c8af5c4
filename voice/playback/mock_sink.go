package playback

import (
	"sync"
	"time"
)

// MockSink implements Sink for testing. Sounds never finish on their own;
// tests drive completion explicitly, which makes scheduler timing fully
// deterministic.
type MockSink struct {
	mu     sync.Mutex
	next   Handle
	sounds map[Handle]*MockSound
	events []SinkEvent
	closed bool

	// Error injection
	startErr   error
	fadeOutErr error
}

// MockSound records everything the scheduler asked of one sound.
type MockSound struct {
	Spec     StartSpec
	FadeOut  time.Duration
	Fading   bool
	Finished bool
}

// SinkEvent records one call against the sink for verification.
type SinkEvent struct {
	Type   string // "start", "fade-out", "close"
	Handle Handle
	Spec   StartSpec
	Fade   time.Duration
}

// NewMockSink creates an empty mock sink.
func NewMockSink() *MockSink {
	return &MockSink{sounds: make(map[Handle]*MockSound)}
}

// Start records the sound and returns a fresh handle.
func (m *MockSink) Start(spec StartSpec) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return 0, m.startErr
	}
	if m.closed {
		return 0, ErrSinkClosed
	}

	m.next++
	h := m.next
	m.sounds[h] = &MockSound{Spec: spec}
	m.events = append(m.events, SinkEvent{Type: "start", Handle: h, Spec: spec})
	return h, nil
}

// SetFadeOut marks the sound as fading. The sound stays unfinished until the
// test calls Finish or FinishFading.
func (m *MockSink) SetFadeOut(h Handle, fade time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fadeOutErr != nil {
		return m.fadeOutErr
	}
	snd, ok := m.sounds[h]
	if !ok {
		return ErrUnknownHandle
	}
	if snd.Fading || snd.Finished {
		return nil
	}
	snd.Fading = true
	snd.FadeOut = fade
	m.events = append(m.events, SinkEvent{Type: "fade-out", Handle: h, Fade: fade})
	return nil
}

// IsFinished reports whether the test has completed the sound.
func (m *MockSink) IsFinished(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	snd, ok := m.sounds[h]
	return ok && snd.Finished
}

// Close marks the sink closed and finishes everything.
func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for _, snd := range m.sounds {
		snd.Finished = true
	}
	m.events = append(m.events, SinkEvent{Type: "close"})
	return nil
}

// Finish completes one sound, as if the device drained it.
func (m *MockSink) Finish(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snd, ok := m.sounds[h]; ok {
		snd.Finished = true
	}
}

// FinishFading completes every sound currently fading and returns how many.
func (m *MockSink) FinishFading() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, snd := range m.sounds {
		if snd.Fading && !snd.Finished {
			snd.Finished = true
			n++
		}
	}
	return n
}

// FinishAll completes every sound.
func (m *MockSink) FinishAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, snd := range m.sounds {
		snd.Finished = true
	}
}

// Sound returns the recorded state for a handle.
func (m *MockSink) Sound(h Handle) (MockSound, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snd, ok := m.sounds[h]
	if !ok {
		return MockSound{}, false
	}
	return *snd, true
}

// Events returns a copy of the recorded call history.
func (m *MockSink) Events() []SinkEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SinkEvent, len(m.events))
	copy(out, m.events)
	return out
}

// StartedCount returns how many sounds were started.
func (m *MockSink) StartedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Type == "start" {
			n++
		}
	}
	return n
}

// SetStartError injects an error for subsequent Start calls.
func (m *MockSink) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetFadeOutError injects an error for subsequent SetFadeOut calls.
func (m *MockSink) SetFadeOutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fadeOutErr = err
}
