package voice

import (
	"fmt"
	"sync"
)

// Bank owns the decoded sample buffers for every installed voice, keyed by
// letter, plus the named special and sound-effect sprites. Buffers are
// installed whole-voice at a time (the asset loader slices a sprite sheet
// and installs the result) and shared read-only with playback from then on.
//
// Install may be called again for a voice at any time — the asset watcher
// uses this to hot-swap a voice after its sheet changes on disk — so all
// lookups go through a read lock.
type Bank struct {
	mu       sync.RWMutex
	letters  map[VoiceType]map[rune]*SampleBuffer
	specials map[VoiceType]map[string]*SampleBuffer
	sfx      map[string]*SampleBuffer
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		letters:  make(map[VoiceType]map[rune]*SampleBuffer),
		specials: make(map[VoiceType]map[string]*SampleBuffer),
		sfx:      make(map[string]*SampleBuffer),
	}
}

// Install replaces the letter and special sprites for one voice.
func (b *Bank) Install(v VoiceType, letters map[rune]*SampleBuffer, specials map[string]*SampleBuffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.letters[v] = letters
	b.specials[v] = specials
}

// InstallSFX replaces the voice-independent sound-effect sprites.
func (b *Bank) InstallSFX(sfx map[string]*SampleBuffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sfx = sfx
}

// HasVoice reports whether any sprites are installed for the voice.
func (b *Bank) HasVoice(v VoiceType) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.letters[v]) > 0
}

// Voices returns the voices with installed letter sprites.
func (b *Bank) Voices() []VoiceType {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []VoiceType
	for _, v := range AllVoices() {
		if len(b.letters[v]) > 0 {
			out = append(out, v)
		}
	}
	return out
}

// Letter returns the sprite for one a-z letter of the given voice.
func (b *Bank) Letter(v VoiceType, c rune) (*SampleBuffer, error) {
	if c < 'a' || c > 'z' {
		return nil, fmt.Errorf("%w: %q", ErrNotALetter, c)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.letters[v][c]
	if !ok || buf.Empty() {
		return nil, fmt.Errorf("%w: voice %s letter %q", ErrAssetMissing, v, c)
	}
	return buf, nil
}

// Special returns a named special sprite ("ok", "gwah", "deska") for the voice.
func (b *Bank) Special(v VoiceType, name string) (*SampleBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.specials[v][name]
	if !ok || buf.Empty() {
		return nil, fmt.Errorf("%w: voice %s special %q", ErrAssetMissing, v, name)
	}
	return buf, nil
}

// SFX returns a named keyboard sound effect sprite.
func (b *Bank) SFX(name string) (*SampleBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.sfx[name]
	if !ok || buf.Empty() {
		return nil, fmt.Errorf("%w: sfx %q", ErrAssetMissing, name)
	}
	return buf, nil
}
