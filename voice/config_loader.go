package voice

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadConfig assembles the effective configuration: stock defaults, then
// ANIMALESE_* environment variables, then any values set in Viper (config
// file and bound command-line flags).
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	applyViper(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyViper overlays values the user actually set; unset keys keep the
// defaults or environment values already in cfg.
func applyViper(cfg *Config) {
	if viper.IsSet("voice") {
		cfg.Voice = viper.GetString("voice")
	}
	if viper.IsSet("pitch_shift") {
		cfg.PitchShift = viper.GetFloat64("pitch_shift")
	}
	if viper.IsSet("pitch_variation") {
		cfg.PitchVariation = viper.GetFloat64("pitch_variation")
	}
	if viper.IsSet("volume") {
		cfg.Volume = viper.GetFloat64("volume")
	}
	if viper.IsSet("intonation") {
		cfg.Intonation = viper.GetFloat64("intonation")
	}
	if viper.IsSet("asset_dir") {
		cfg.AssetDir = viper.GetString("asset_dir")
	}
	if viper.IsSet("watch_assets") {
		cfg.WatchAssets = viper.GetBool("watch_assets")
	}
	if viper.IsSet("missing_symbol") {
		cfg.MissingSymbol = viper.GetString("missing_symbol")
	}
	if viper.IsSet("playback.sample_rate") {
		cfg.SampleRate = viper.GetInt("playback.sample_rate")
	}
	if viper.IsSet("playback.max_voices") {
		cfg.MaxVoices = viper.GetInt("playback.max_voices")
	}
	if viper.IsSet("playback.fade_in") {
		if d, err := time.ParseDuration(viper.GetString("playback.fade_in")); err == nil {
			cfg.FadeIn = d
		}
	}
	if viper.IsSet("playback.fade_out") {
		if d, err := time.ParseDuration(viper.GetString("playback.fade_out")); err == nil {
			cfg.FadeOut = d
		}
	}
}
