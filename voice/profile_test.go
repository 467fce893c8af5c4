package voice

import (
	"errors"
	"testing"
)

// TestDefaultProfile verifies the stock profile values.
func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	want := Profile{
		Voice:          VoiceF1,
		PitchShift:     0,
		PitchVariation: 0.8,
		Volume:         0.65,
		Intonation:     0,
	}
	if p != want {
		t.Errorf("DefaultProfile() = %+v, want %+v", p, want)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("DefaultProfile().Validate() = %v, want nil", err)
	}
}

// TestProfileValidate verifies out-of-range values are rejected, never
// clamped.
func TestProfileValidate(t *testing.T) {
	valid := DefaultProfile()

	tests := []struct {
		name   string
		mutate func(*Profile)
		ok     bool
	}{
		{"default", func(*Profile) {}, true},
		{"shift at low bound", func(p *Profile) { p.PitchShift = -12 }, true},
		{"shift at high bound", func(p *Profile) { p.PitchShift = 12 }, true},
		{"shift below range", func(p *Profile) { p.PitchShift = -12.1 }, false},
		{"shift above range", func(p *Profile) { p.PitchShift = 12.1 }, false},
		{"variation at bound", func(p *Profile) { p.PitchVariation = 2 }, true},
		{"variation negative", func(p *Profile) { p.PitchVariation = -0.1 }, false},
		{"variation above range", func(p *Profile) { p.PitchVariation = 2.1 }, false},
		{"volume zero", func(p *Profile) { p.Volume = 0 }, true},
		{"volume above one", func(p *Profile) { p.Volume = 1.01 }, false},
		{"volume negative", func(p *Profile) { p.Volume = -0.5 }, false},
		{"intonation at bounds", func(p *Profile) { p.Intonation = -1 }, true},
		{"intonation above range", func(p *Profile) { p.Intonation = 1.5 }, false},
		{"voice out of range", func(p *Profile) { p.Voice = VoiceType(42) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Validate() = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

// TestNewProfileRejectsInvalid verifies the constructor path validates too.
func TestNewProfileRejectsInvalid(t *testing.T) {
	if _, err := NewProfile(VoiceF2, 0, 0.5, 2.0, 0); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("NewProfile() error = %v, want ErrInvalidProfile", err)
	}
	p, err := NewProfile(VoiceM3, -3, 1.0, 0.5, 0.2)
	if err != nil {
		t.Fatalf("NewProfile() error = %v, want nil", err)
	}
	if p.Voice != VoiceM3 || p.PitchShift != -3 {
		t.Errorf("NewProfile() = %+v", p)
	}
}

// TestProfilePresets verifies the derived intonation presets leave the rest
// of the profile alone.
func TestProfilePresets(t *testing.T) {
	base := Profile{Voice: VoiceM2, PitchShift: 1, PitchVariation: 0.5, Volume: 0.7}

	t.Run("question", func(t *testing.T) {
		q := base.Question()
		if q.Intonation != QuestionIntonation {
			t.Errorf("Intonation = %v, want %v", q.Intonation, QuestionIntonation)
		}
		if q.PitchShift != base.PitchShift || q.Voice != base.Voice {
			t.Error("Question() changed unrelated fields")
		}
	})

	t.Run("excited", func(t *testing.T) {
		e := base.Excited()
		if e.Intonation != ExcitedIntonation {
			t.Errorf("Intonation = %v, want %v", e.Intonation, ExcitedIntonation)
		}
		if e.PitchShift != base.PitchShift+ExcitedPitchBoost {
			t.Errorf("PitchShift = %v, want %v", e.PitchShift, base.PitchShift+ExcitedPitchBoost)
		}
	})

	t.Run("excited boost clamps at range", func(t *testing.T) {
		high := base
		high.PitchShift = 11
		e := high.Excited()
		if e.PitchShift != MaxPitchShift {
			t.Errorf("PitchShift = %v, want %v", e.PitchShift, MaxPitchShift)
		}
		if err := e.Validate(); err != nil {
			t.Errorf("Excited() produced invalid profile: %v", err)
		}
	})

	t.Run("statement", func(t *testing.T) {
		s := base.Statement()
		if s.Intonation != StatementIntonation {
			t.Errorf("Intonation = %v, want %v", s.Intonation, StatementIntonation)
		}
	})

	// Presets return copies; the receiver is untouched.
	if base.Intonation != 0 {
		t.Errorf("base profile mutated: Intonation = %v", base.Intonation)
	}
}

// TestParseVoiceType verifies voice name resolution.
func TestParseVoiceType(t *testing.T) {
	tests := []struct {
		in      string
		want    VoiceType
		wantErr bool
	}{
		{"f1", VoiceF1, false},
		{"M4", VoiceM4, false},
		{" f3 ", VoiceF3, false},
		{"f9", VoiceF1, true},
		{"", VoiceF1, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVoiceType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownVoice) {
					t.Errorf("ParseVoiceType(%q) error = %v, want ErrUnknownVoice", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseVoiceType(%q) = %v, %v, want %v, nil", tt.in, got, err, tt.want)
			}
		})
	}
}
