// Package ui provides the interactive typing mode: keystrokes babble as they
// are typed and a finished line is spoken back with sentence intonation.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/bleeptalk/animalese/internal/typing"
	"github.com/bleeptalk/animalese/voice"
)

// keystrokeRate caps how many sounds per second keystrokes may trigger; a
// held-down key repeats faster than distinct sounds stay audible.
const keystrokeRate = 40

// statusTimeout is how long transient status messages stay visible.
const statusTimeout = 3 * time.Second

// Speaker is the slice of the voice engine the UI drives. Tests supply a
// fake; production passes *voice.Engine.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	PlayLetterWithLimit(c rune, limit time.Duration) error
	PlaySFX(name string) error
	Profile() voice.Profile
	SetProfile(p voice.Profile) error
	Stop()
}

// NewProgram returns the Tea program for interactive mode.
func NewProgram(speaker Speaker, voices []voice.VoiceType) *tea.Program {
	return tea.NewProgram(NewModel(speaker, voices))
}

type speakDoneMsg struct{ err error }

type statusExpireMsg struct{ id int }

// Model is the interactive-mode state.
type Model struct {
	speaker  Speaker
	voices   []voice.VoiceType
	input    textinput.Model
	detector *typing.Detector
	limiter  *rate.Limiter

	speaking bool
	status   string
	statusID int
	errText  string
	width    int
}

// NewModel builds the interactive model.
func NewModel(speaker Speaker, voices []voice.VoiceType) Model {
	ti := textinput.New()
	ti.Placeholder = "type something..."
	ti.Prompt = "> "
	ti.Focus()

	return Model{
		speaker:  speaker,
		voices:   voices,
		input:    ti,
		detector: typing.NewDetector(),
		limiter:  rate.NewLimiter(rate.Limit(keystrokeRate), keystrokeRate),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case speakDoneMsg:
		m.speaking = false
		if msg.err != nil && !isCancel(msg.err) {
			m.errText = msg.err.Error()
		}
		return m, nil

	case statusExpireMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.speaker.Stop()
		return m, tea.Quit

	case tea.KeyEnter:
		m.playEffect("enter")
		line := m.input.Value()
		m.input.Reset()
		m.detector.Reset()
		m.errText = ""
		if line == "" || m.speaking {
			return m, nil
		}
		m.speaking = true
		return m, m.speakCmd(line)

	case tea.KeyBackspace:
		m.playEffect("backspace")

	case tea.KeyTab:
		m.playEffect("tab")
		return m, nil

	case tea.KeyCtrlY:
		if err := clipboard.WriteAll(m.input.Value()); err != nil {
			log.Debug("clipboard write failed", "err", err)
			return m.setStatus("clipboard unavailable")
		}
		return m.setStatus("copied line to clipboard")

	case tea.KeyCtrlN:
		return m.cycleVoice()

	case tea.KeyRunes:
		if !msg.Alt {
			m.playRunes(msg.Runes)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// playRunes voices typed symbols, throttled and shortened during fast
// bursts.
func (m *Model) playRunes(runes []rune) {
	for _, r := range runes {
		limit := m.detector.Keystroke()
		if !m.limiter.Allow() {
			continue
		}
		if err := m.speaker.PlayLetterWithLimit(r, limit); err != nil {
			// Digits and punctuation have no letter sprite; stay quiet.
			log.Debug("keystroke not voiced", "rune", string(r), "err", err)
		}
	}
}

// playEffect voices a keyboard sound effect, throttled with the keystrokes.
func (m *Model) playEffect(name string) {
	if !m.limiter.Allow() {
		return
	}
	if err := m.speaker.PlaySFX(name); err != nil {
		log.Debug("effect not voiced", "name", name, "err", err)
	}
}

// speakCmd speaks one line off the update loop.
func (m Model) speakCmd(line string) tea.Cmd {
	speaker := m.speaker
	return func() tea.Msg {
		return speakDoneMsg{err: speaker.Speak(context.Background(), line)}
	}
}

// cycleVoice switches the profile to the next loaded voice.
func (m Model) cycleVoice() (tea.Model, tea.Cmd) {
	if len(m.voices) == 0 {
		return m, nil
	}

	p := m.speaker.Profile()
	next := m.voices[0]
	for i, v := range m.voices {
		if v == p.Voice {
			next = m.voices[(i+1)%len(m.voices)]
			break
		}
	}

	p.Voice = next
	if err := m.speaker.SetProfile(p); err != nil {
		m.errText = err.Error()
		return m, nil
	}
	return m.setStatus("voice: " + next.String())
}

// setStatus shows a transient status message.
func (m Model) setStatus(s string) (tea.Model, tea.Cmd) {
	m.status = s
	m.statusID++
	id := m.statusID
	return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusExpireMsg{id: id}
	})
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}
