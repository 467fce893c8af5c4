package voice

import (
	"fmt"
	"time"
)

// Config contains every tunable for the engine and its playback scheduler.
// Values come from the config file, the environment, and command-line flags,
// in that order of precedence.
type Config struct {
	// Voice profile settings
	Voice          string  `yaml:"voice" env:"ANIMALESE_VOICE" envDefault:"f1"`
	PitchShift     float64 `yaml:"pitch_shift" env:"ANIMALESE_PITCH_SHIFT" envDefault:"0"`
	PitchVariation float64 `yaml:"pitch_variation" env:"ANIMALESE_PITCH_VARIATION" envDefault:"0.8"`
	Volume         float64 `yaml:"volume" env:"ANIMALESE_VOLUME" envDefault:"0.65"`
	Intonation     float64 `yaml:"intonation" env:"ANIMALESE_INTONATION" envDefault:"0"`

	// Asset settings
	AssetDir    string `yaml:"asset_dir" env:"ANIMALESE_ASSET_DIR"`
	WatchAssets bool   `yaml:"watch_assets" env:"ANIMALESE_WATCH_ASSETS" envDefault:"false"`

	// Behavior for letters without sprites: "skip" or "pause".
	MissingSymbol string `yaml:"missing_symbol" env:"ANIMALESE_MISSING_SYMBOL" envDefault:"skip"`

	// Playback settings
	SampleRate int           `yaml:"sample_rate" env:"ANIMALESE_SAMPLE_RATE" envDefault:"44100"`
	MaxVoices  int           `yaml:"max_voices" env:"ANIMALESE_MAX_VOICES" envDefault:"8"`
	FadeIn     time.Duration `yaml:"fade_in" env:"ANIMALESE_FADE_IN" envDefault:"5ms"`
	FadeOut    time.Duration `yaml:"fade_out" env:"ANIMALESE_FADE_OUT" envDefault:"10ms"`
}

// DefaultConfig returns a Config with the stock defaults.
func DefaultConfig() Config {
	return Config{
		Voice:          "f1",
		PitchShift:     0,
		PitchVariation: 0.8,
		Volume:         0.65,
		Intonation:     0,
		MissingSymbol:  "skip",
		SampleRate:     44100,
		MaxVoices:      8,
		FadeIn:         5 * time.Millisecond,
		FadeOut:        10 * time.Millisecond,
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if _, err := ParseVoiceType(c.Voice); err != nil {
		return err
	}
	if _, err := ParseMissingSymbolPolicy(c.MissingSymbol); err != nil {
		return err
	}

	if c.PitchShift < MinPitchShift || c.PitchShift > MaxPitchShift {
		return fmt.Errorf("%w: pitch_shift must be between %.0f and %.0f, got %.2f",
			ErrInvalidConfig, MinPitchShift, MaxPitchShift, c.PitchShift)
	}
	if c.PitchVariation < 0 || c.PitchVariation > MaxPitchVariation {
		return fmt.Errorf("%w: pitch_variation must be between 0 and %.0f, got %.2f",
			ErrInvalidConfig, MaxPitchVariation, c.PitchVariation)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume must be between 0.0 and 1.0, got %.2f",
			ErrInvalidConfig, c.Volume)
	}
	if c.Intonation < -1 || c.Intonation > 1 {
		return fmt.Errorf("%w: intonation must be between -1.0 and 1.0, got %.2f",
			ErrInvalidConfig, c.Intonation)
	}

	validRates := []int{8000, 16000, 22050, 24000, 44100, 48000}
	rateOK := false
	for _, r := range validRates {
		if c.SampleRate == r {
			rateOK = true
			break
		}
	}
	if !rateOK {
		return fmt.Errorf("%w: sample_rate %d must be one of %v",
			ErrInvalidConfig, c.SampleRate, validRates)
	}

	if c.MaxVoices < 1 || c.MaxVoices > 64 {
		return fmt.Errorf("%w: max_voices must be between 1 and 64, got %d",
			ErrInvalidConfig, c.MaxVoices)
	}
	if c.FadeIn <= 0 || c.FadeIn > 100*time.Millisecond {
		return fmt.Errorf("%w: fade_in must be between 1ms and 100ms, got %v",
			ErrInvalidConfig, c.FadeIn)
	}
	if c.FadeOut <= 0 || c.FadeOut > 500*time.Millisecond {
		return fmt.Errorf("%w: fade_out must be between 1ms and 500ms, got %v",
			ErrInvalidConfig, c.FadeOut)
	}
	return nil
}

// ToProfile builds the validated voice profile described by the config.
func (c *Config) ToProfile() (Profile, error) {
	v, err := ParseVoiceType(c.Voice)
	if err != nil {
		return Profile{}, err
	}
	return NewProfile(v, c.PitchShift, c.PitchVariation, c.Volume, c.Intonation)
}

// MissingPolicy returns the parsed missing-symbol policy.
func (c *Config) MissingPolicy() (MissingSymbolPolicy, error) {
	return ParseMissingSymbolPolicy(c.MissingSymbol)
}
