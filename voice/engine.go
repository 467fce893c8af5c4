package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MissingSymbolPolicy decides what happens when a letter has no sprite for
// the active voice.
type MissingSymbolPolicy int

const (
	// MissingSkip drops the symbol and keeps going.
	MissingSkip MissingSymbolPolicy = iota
	// MissingPause substitutes a short silent pause for the symbol.
	MissingPause
)

// String returns the policy's configuration name.
func (p MissingSymbolPolicy) String() string {
	switch p {
	case MissingSkip:
		return "skip"
	case MissingPause:
		return "pause"
	default:
		return "unknown"
	}
}

// ParseMissingSymbolPolicy resolves a configuration name to a policy.
func ParseMissingSymbolPolicy(s string) (MissingSymbolPolicy, error) {
	switch s {
	case "skip", "":
		return MissingSkip, nil
	case "pause":
		return MissingPause, nil
	default:
		return MissingSkip, fmt.Errorf("%w: missing_symbol %q (use skip or pause)", ErrInvalidConfig, s)
	}
}

// Speech cadence constants. Letter sprites are 200ms; the gaps below overlap
// consecutive letters slightly, which is what gives the babble its rhythm.
const (
	// LetterGap is the delay between consecutive letter onsets.
	LetterGap = 50 * time.Millisecond
	// SpaceGap is the silent pause for a space.
	SpaceGap = 100 * time.Millisecond
	// LineGap is the silent pause for a newline.
	LineGap = 200 * time.Millisecond
)

// Engine synthesizes gibberish speech: it walks the symbols of an utterance,
// looks up each letter's sprite in the bank, layers the intonation offset and
// the per-letter random draw onto the profile's base pitch, and submits the
// result for scheduled playback.
type Engine struct {
	bank    *Bank
	out     Submitter
	sampler *Sampler

	mu      sync.RWMutex
	profile Profile
	missing MissingSymbolPolicy
	closed  bool
}

// Option customizes engine construction.
type Option func(*Engine)

// WithRand injects the randomness source for pitch variation.
func WithRand(rng Rand) Option {
	return func(e *Engine) { e.sampler = NewSampler(rng) }
}

// WithMissingSymbolPolicy sets the policy for letters without sprites.
func WithMissingSymbolPolicy(p MissingSymbolPolicy) Option {
	return func(e *Engine) { e.missing = p }
}

// NewEngine creates an engine speaking through the given bank and output.
func NewEngine(bank *Bank, out Submitter, opts ...Option) (*Engine, error) {
	if bank == nil {
		return nil, errors.New("voice: nil bank")
	}
	if out == nil {
		return nil, ErrNoOutput
	}

	e := &Engine{
		bank:    bank,
		out:     out,
		profile: DefaultProfile(),
		missing: MissingSkip,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sampler == nil {
		e.sampler = NewSampler(nil)
	}
	return e, nil
}

// Profile returns a copy of the active voice profile.
func (e *Engine) Profile() Profile {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.profile
}

// SetProfile replaces the active profile wholesale after validating it.
func (e *Engine) SetProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = p
	return nil
}

// Speak voices the text with the active profile. Letters get play requests
// at the profile's cadence; spaces and newlines become pauses. Text ending
// with '?' on a flat profile picks up a gentle rising intonation. Missing
// sprites are handled by the missing-symbol policy and reported after the
// utterance completes; they never abort it.
func (e *Engine) Speak(ctx context.Context, text string) error {
	return e.speakWith(ctx, text, e.Profile())
}

// SpeakQuestion voices the text with rising question intonation.
func (e *Engine) SpeakQuestion(ctx context.Context, text string) error {
	return e.speakWith(ctx, text, e.Profile().Question())
}

// SpeakExcited voices the text with a pitch boost and rising intonation.
func (e *Engine) SpeakExcited(ctx context.Context, text string) error {
	return e.speakWith(ctx, text, e.Profile().Excited())
}

// SpeakStatement voices the text with falling statement intonation.
func (e *Engine) SpeakStatement(ctx context.Context, text string) error {
	return e.speakWith(ctx, text, e.Profile().Statement())
}

func (e *Engine) speakWith(ctx context.Context, text string, p Profile) error {
	if e.isClosed() {
		return ErrEngineClosed
	}

	normalized := normalizeText(text)
	total := countLetters(normalized)
	if total == 0 {
		return nil
	}

	coeff := p.Intonation
	if coeff == 0 && endsWithQuestion(text) {
		coeff = AutoQuestionIntonation
	}

	log.Debug("speaking utterance",
		"voice", p.Voice, "letters", total, "intonation", coeff)

	var missing []rune
	position := 0
	for _, r := range normalized {
		if err := ctx.Err(); err != nil {
			e.out.StopAll()
			return err
		}

		switch classifySymbol(r) {
		case symbolLetter:
			offset := OffsetAt(position, total, coeff)
			position++
			if err := e.playLetter(r, p, offset, 0); err != nil {
				if errors.Is(err, ErrAssetMissing) {
					missing = append(missing, r)
					if e.missingPolicy() == MissingPause {
						if err := sleepCtx(ctx, LetterGap); err != nil {
							return err
						}
					}
					continue
				}
				return err
			}
			if err := sleepCtx(ctx, LetterGap); err != nil {
				e.out.StopAll()
				return err
			}
		case symbolSpace:
			if err := sleepCtx(ctx, SpaceGap); err != nil {
				e.out.StopAll()
				return err
			}
		case symbolNewline:
			if err := sleepCtx(ctx, LineGap); err != nil {
				e.out.StopAll()
				return err
			}
		case symbolOther:
			// Punctuation and digits have no sprites; they shape cadence
			// only through the question check above.
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: voice %s has no sprites for %q",
			ErrAssetMissing, p.Voice, string(missing))
	}
	return nil
}

// PlayLetter voices a single letter with the active profile, for
// interactive keystroke playback.
func (e *Engine) PlayLetter(c rune) error {
	return e.PlayLetterWithLimit(c, 0)
}

// PlayLetterWithLimit voices a single letter, truncating playback to limit
// when nonzero. The interactive front end shortens letters during fast
// typing so sounds don't pile up.
func (e *Engine) PlayLetterWithLimit(c rune, limit time.Duration) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	normalized := normalizeText(string(c))
	for _, r := range normalized {
		if classifySymbol(r) != symbolLetter {
			return fmt.Errorf("%w: %q", ErrNotALetter, c)
		}
		return e.playLetter(r, e.Profile(), 0, limit)
	}
	return fmt.Errorf("%w: %q", ErrNotALetter, c)
}

// playLetter computes the letter's effective rate and submits it.
func (e *Engine) playLetter(c rune, p Profile, intonationOffset float64, limit time.Duration) error {
	buf, err := e.bank.Letter(p.Voice, c)
	if err != nil {
		return err
	}

	rate := e.sampler.Rate(p.PitchShift+intonationOffset, p.PitchVariation)
	return e.out.Submit(PlayRequest{
		Buffer: buf,
		Rate:   rate,
		Volume: p.Volume,
		Limit:  limit,
	})
}

// PlaySpecial voices a named special sprite ("ok", "gwah", "deska") with the
// active profile's pitch randomization.
func (e *Engine) PlaySpecial(name string) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	p := e.Profile()
	buf, err := e.bank.Special(p.Voice, name)
	if err != nil {
		return err
	}
	return e.out.Submit(PlayRequest{
		Buffer: buf,
		Rate:   e.sampler.Rate(p.PitchShift, p.PitchVariation),
		Volume: p.Volume,
	})
}

// PlaySFX voices a keyboard sound effect at the profile volume. Effects play
// at their recorded pitch; randomizing them sounds broken, not playful.
func (e *Engine) PlaySFX(name string) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	p := e.Profile()
	buf, err := e.bank.SFX(name)
	if err != nil {
		return err
	}
	return e.out.Submit(PlayRequest{
		Buffer: buf,
		Rate:   1.0,
		Volume: p.Volume,
	})
}

// Stop fades out everything the engine currently has sounding.
func (e *Engine) Stop() {
	e.out.StopAll()
}

// Close stops playback and rejects further use of the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.out.StopAll()
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

func (e *Engine) missingPolicy() MissingSymbolPolicy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.missing
}

// sleepCtx waits for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
