// Package assets loads voice sprite sheets and the sound-effect sheet from
// disk into a voice.Bank, and can watch the asset directory for edits.
//
// Every voice sheet shares one layout: the twenty-six letter sprites sit at
// fixed 200ms strides from the start of the file, followed by three longer
// exclamation sprites. The sound-effect sheet uses 600ms strides. Fixed
// offsets keep the sheets editable in any audio tool without a sidecar
// manifest.
package assets

import "time"

// Sheet layout constants.
const (
	// LetterStride is the spacing between letter sprites in a voice sheet.
	LetterStride = 200 * time.Millisecond
	// LetterDuration is the length of one letter sprite.
	LetterDuration = 200 * time.Millisecond

	// SpecialDuration is the length of one exclamation sprite.
	SpecialDuration = 600 * time.Millisecond

	// SFXStride is the spacing between sprites in the sound-effect sheet.
	SFXStride = 600 * time.Millisecond
	// SFXDuration is the length of one sound-effect sprite.
	SFXDuration = 600 * time.Millisecond
)

// Exclamation sprite positions within a voice sheet.
var specialOffsets = map[string]time.Duration{
	"ok":    5200 * time.Millisecond,
	"gwah":  5800 * time.Millisecond,
	"deska": 6400 * time.Millisecond,
}

// SpecialNames returns the exclamation sprite names in sheet order.
func SpecialNames() []string {
	return []string{"ok", "gwah", "deska"}
}

// LetterOffset returns the sheet position of a letter sprite. The caller
// guarantees r is in 'a'..'z'.
func LetterOffset(r rune) time.Duration {
	return time.Duration(r-'a') * LetterStride
}

// SpecialOffset returns the sheet position of an exclamation sprite and
// whether the name is known.
func SpecialOffset(name string) (time.Duration, bool) {
	off, ok := specialOffsets[name]
	return off, ok
}

// sfxIndex maps effect names to their slot in the sound-effect sheet.
var sfxIndex = map[string]int{
	"backspace":          0,
	"enter":              1,
	"tab":                2,
	"question":           3,
	"exclamation":        4,
	"at":                 5,
	"pound":              6,
	"dollar":             7,
	"caret":              8,
	"ampersand":          9,
	"asterisk":           10,
	"parenthesis_open":   11,
	"parenthesis_closed": 12,
	"bracket_open":       13,
	"bracket_closed":     14,
	"brace_open":         15,
	"brace_closed":       16,
	"tilde":              17,
	"default":            18,
	"arrow_left":         19,
	"arrow_up":           20,
	"arrow_right":        21,
	"arrow_down":         22,
	"slash_forward":      23,
	"slash_back":         24,
	"percent":            25,
}

// SFXOffset returns the sheet position of a sound effect and whether the
// name is known.
func SFXOffset(name string) (time.Duration, bool) {
	idx, ok := sfxIndex[name]
	if !ok {
		return 0, false
	}
	return time.Duration(idx) * SFXStride, true
}

// SFXNames returns every known effect name in sheet order.
func SFXNames() []string {
	names := make([]string, len(sfxIndex))
	for name, idx := range sfxIndex {
		names[idx] = name
	}
	return names
}
