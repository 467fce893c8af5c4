package voice

import "errors"

// Common errors for the voice engine.
var (
	// Profile errors
	ErrInvalidProfile = errors.New("invalid voice profile")
	ErrUnknownVoice   = errors.New("unknown voice type")

	// Bank errors
	ErrAssetMissing = errors.New("voice asset missing")
	ErrNotALetter   = errors.New("symbol has no letter sprite")
	ErrUnknownSFX   = errors.New("unknown sound effect")
	ErrUnknownSpecial = errors.New("unknown special sound")

	// Engine errors
	ErrEngineClosed = errors.New("engine has been closed")
	ErrNoOutput     = errors.New("engine has no playback output")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)
