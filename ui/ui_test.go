package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bleeptalk/animalese/voice"
)

// fakeSpeaker records every call the UI makes.
type fakeSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	letters []rune
	limits  []time.Duration
	effects []string
	stops   int
	profile voice.Profile
}

func newFakeSpeaker() *fakeSpeaker {
	return &fakeSpeaker{profile: voice.DefaultProfile()}
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeaker) PlayLetterWithLimit(c rune, limit time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.letters = append(f.letters, c)
	f.limits = append(f.limits, limit)
	return nil
}

func (f *fakeSpeaker) PlaySFX(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effects = append(f.effects, name)
	return nil
}

func (f *fakeSpeaker) Profile() voice.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

func (f *fakeSpeaker) SetProfile(p voice.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile = p
	return nil
}

func (f *fakeSpeaker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestTypingVoicesLetters verifies typed letters play and land in the input.
func TestTypingVoicesLetters(t *testing.T) {
	speaker := newFakeSpeaker()
	m := NewModel(speaker, voice.AllVoices())

	var model tea.Model = m
	for _, r := range "hi" {
		model, _ = model.Update(keyRunes(string(r)))
	}

	if got := string(speaker.letters); got != "hi" {
		t.Errorf("voiced letters = %q, want %q", got, "hi")
	}
	if got := model.(Model).input.Value(); got != "hi" {
		t.Errorf("input value = %q, want %q", got, "hi")
	}
}

// TestEnterSpeaksLine verifies enter plays its effect, speaks the line, and
// clears the input.
func TestEnterSpeaksLine(t *testing.T) {
	speaker := newFakeSpeaker()
	var model tea.Model = NewModel(speaker, voice.AllVoices())

	model, _ = model.Update(keyRunes("ok"))
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("speak command returned nil message")
	}

	if len(speaker.spoken) != 1 || speaker.spoken[0] != "ok" {
		t.Errorf("spoken = %v, want [ok]", speaker.spoken)
	}
	if len(speaker.effects) == 0 || speaker.effects[0] != "enter" {
		t.Errorf("effects = %v, want enter first", speaker.effects)
	}
	if got := model.(Model).input.Value(); got != "" {
		t.Errorf("input not cleared after enter: %q", got)
	}
}

// TestEnterOnEmptyLineDoesNotSpeak verifies no utterance for an empty line.
func TestEnterOnEmptyLineDoesNotSpeak(t *testing.T) {
	speaker := newFakeSpeaker()
	var model tea.Model = NewModel(speaker, voice.AllVoices())

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on empty line returned a command")
	}
	if len(speaker.spoken) != 0 {
		t.Errorf("spoken = %v, want none", speaker.spoken)
	}
	_ = model
}

// TestKeyboardEffects verifies backspace and tab voice their effects.
func TestKeyboardEffects(t *testing.T) {
	speaker := newFakeSpeaker()
	var model tea.Model = NewModel(speaker, voice.AllVoices())

	model, _ = model.Update(keyRunes("ab"))
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})

	want := []string{"backspace", "tab"}
	if len(speaker.effects) != 2 || speaker.effects[0] != want[0] || speaker.effects[1] != want[1] {
		t.Errorf("effects = %v, want %v", speaker.effects, want)
	}
	// Backspace edits the input; tab does not.
	if got := model.(Model).input.Value(); got != "a" {
		t.Errorf("input value = %q, want %q", got, "a")
	}
}

// TestCycleVoice verifies ctrl+n advances through the loaded voices in
// order, wrapping at the end.
func TestCycleVoice(t *testing.T) {
	speaker := newFakeSpeaker()
	voices := []voice.VoiceType{voice.VoiceF1, voice.VoiceF2, voice.VoiceM1}
	var model tea.Model = NewModel(speaker, voices)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if got := speaker.Profile().Voice; got != voice.VoiceF2 {
		t.Errorf("voice after first cycle = %v, want f2", got)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if got := speaker.Profile().Voice; got != voice.VoiceF1 {
		t.Errorf("voice after wrap = %v, want f1", got)
	}
	_ = model
}

// TestQuitStopsPlayback verifies esc fades out whatever is sounding.
func TestQuitStopsPlayback(t *testing.T) {
	speaker := newFakeSpeaker()
	var model tea.Model = NewModel(speaker, voice.AllVoices())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if speaker.stops != 1 {
		t.Errorf("Stop called %d times, want 1", speaker.stops)
	}
}

// TestSpeakDoneClearsSpinner verifies completion unsets the speaking state.
func TestSpeakDoneClearsSpinner(t *testing.T) {
	speaker := newFakeSpeaker()
	var model tea.Model = NewModel(speaker, voice.AllVoices())

	model, _ = model.Update(keyRunes("hey"))
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !model.(Model).speaking {
		t.Fatal("speaking = false right after enter")
	}

	model, _ = model.Update(speakDoneMsg{})
	if model.(Model).speaking {
		t.Error("speaking = true after done message")
	}
}

// TestViewShowsVoice verifies the idle status line names the active voice.
func TestViewShowsVoice(t *testing.T) {
	speaker := newFakeSpeaker()
	m := NewModel(speaker, voice.AllVoices())

	if view := m.View(); !strings.Contains(view, "voice: f1") {
		t.Errorf("view missing voice status:\n%s", view)
	}
}
