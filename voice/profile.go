package voice

import (
	"fmt"
	"strings"
)

// VoiceType identifies one of the eight fixed timbre presets.
type VoiceType int

const (
	// VoiceF1 through VoiceF4 are the female-register presets.
	VoiceF1 VoiceType = iota
	VoiceF2
	VoiceF3
	VoiceF4
	// VoiceM1 through VoiceM4 are the male-register presets.
	VoiceM1
	VoiceM2
	VoiceM3
	VoiceM4
)

// String returns the short name of the voice (f1..f4, m1..m4).
func (v VoiceType) String() string {
	switch v {
	case VoiceF1:
		return "f1"
	case VoiceF2:
		return "f2"
	case VoiceF3:
		return "f3"
	case VoiceF4:
		return "f4"
	case VoiceM1:
		return "m1"
	case VoiceM2:
		return "m2"
	case VoiceM3:
		return "m3"
	case VoiceM4:
		return "m4"
	default:
		return "unknown"
	}
}

// Filename returns the sprite-sheet file stem for the voice ("f1", "m3", ...).
// The asset loader appends the container extension.
func (v VoiceType) Filename() string {
	return v.String()
}

// AllVoices returns every voice preset in declaration order.
func AllVoices() []VoiceType {
	return []VoiceType{
		VoiceF1, VoiceF2, VoiceF3, VoiceF4,
		VoiceM1, VoiceM2, VoiceM3, VoiceM4,
	}
}

// VoiceNames returns the short names of every voice preset.
func VoiceNames() []string {
	voices := AllVoices()
	names := make([]string, len(voices))
	for i, v := range voices {
		names[i] = v.String()
	}
	return names
}

// ParseVoiceType resolves a short voice name (case-insensitive) to its preset.
func ParseVoiceType(s string) (VoiceType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, v := range AllVoices() {
		if v.String() == name {
			return v, nil
		}
	}
	return VoiceF1, fmt.Errorf("%w: %q", ErrUnknownVoice, s)
}

// Profile range limits. Values outside these are rejected at construction,
// never silently clamped.
const (
	MinPitchShift     = -12.0
	MaxPitchShift     = 12.0
	MaxPitchVariation = 2.0
)

// Intonation preset coefficients. Presets are just coefficient values layered
// onto an otherwise-identical profile, not separate synthesis paths.
const (
	// QuestionIntonation is the rising glide used by Question profiles.
	QuestionIntonation = 0.6
	// ExcitedIntonation is the gentle rise used by Excited profiles.
	ExcitedIntonation = 0.4
	// ExcitedPitchBoost is the flat semitone boost Excited adds on top.
	ExcitedPitchBoost = 2.0
	// StatementIntonation is the falling glide used by Statement profiles.
	StatementIntonation = -0.3
	// AutoQuestionIntonation is applied when spoken text ends with '?' and
	// the profile itself is flat.
	AutoQuestionIntonation = 0.5
)

// Profile is an immutable voice configuration. Callers replace it wholesale
// via Engine.SetProfile rather than mutating fields of a live profile.
type Profile struct {
	Voice          VoiceType // timbre preset
	PitchShift     float64   // fixed shift in semitones [-12, 12]
	PitchVariation float64   // random variation range in semitones [0, 2]
	Volume         float64   // amplitude multiplier [0, 1]
	Intonation     float64   // sentence pitch glide [-1 falling, 1 rising]
}

// DefaultProfile returns the stock profile: F1, no shift, 0.8 semitones of
// variation, volume 0.65, flat intonation.
func DefaultProfile() Profile {
	return Profile{
		Voice:          VoiceF1,
		PitchShift:     0,
		PitchVariation: 0.8,
		Volume:         0.65,
		Intonation:     0,
	}
}

// NewProfile builds a validated profile.
func NewProfile(v VoiceType, shift, variation, volume, intonation float64) (Profile, error) {
	p := Profile{
		Voice:          v,
		PitchShift:     shift,
		PitchVariation: variation,
		Volume:         volume,
		Intonation:     intonation,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks every field against its valid domain.
func (p Profile) Validate() error {
	if p.Voice < VoiceF1 || p.Voice > VoiceM4 {
		return fmt.Errorf("%w: voice %d out of range", ErrInvalidProfile, int(p.Voice))
	}
	if p.PitchShift < MinPitchShift || p.PitchShift > MaxPitchShift {
		return fmt.Errorf("%w: pitch_shift %.2f outside [%.0f, %.0f]",
			ErrInvalidProfile, p.PitchShift, MinPitchShift, MaxPitchShift)
	}
	if p.PitchVariation < 0 || p.PitchVariation > MaxPitchVariation {
		return fmt.Errorf("%w: pitch_variation %.2f outside [0, %.0f]",
			ErrInvalidProfile, p.PitchVariation, MaxPitchVariation)
	}
	if p.Volume < 0 || p.Volume > 1 {
		return fmt.Errorf("%w: volume %.2f outside [0, 1]", ErrInvalidProfile, p.Volume)
	}
	if p.Intonation < -1 || p.Intonation > 1 {
		return fmt.Errorf("%w: intonation %.2f outside [-1, 1]", ErrInvalidProfile, p.Intonation)
	}
	return nil
}

// Question returns a copy of the profile with rising question intonation.
func (p Profile) Question() Profile {
	p.Intonation = QuestionIntonation
	return p
}

// Excited returns a copy of the profile with a pitch boost and a gentle rise.
// The boosted shift stays inside the valid profile range.
func (p Profile) Excited() Profile {
	p.PitchShift += ExcitedPitchBoost
	if p.PitchShift > MaxPitchShift {
		p.PitchShift = MaxPitchShift
	}
	p.Intonation = ExcitedIntonation
	return p
}

// Statement returns a copy of the profile with falling statement intonation.
func (p Profile) Statement() Profile {
	p.Intonation = StatementIntonation
	return p
}
