package assets

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/go-audio/wav"
	"github.com/klauspost/compress/gzip"
	"github.com/mitchellh/go-homedir"

	"github.com/bleeptalk/animalese/internal/cache"
	"github.com/bleeptalk/animalese/voice"
)

// sfxStem is the file stem of the sound-effect sheet.
const sfxStem = "sfx"

// Loader reads sprite sheets from an asset directory and installs their
// sprites into a bank. Decoded sheets are cached so a hot reload of one
// voice does not re-decode the rest.
type Loader struct {
	dir   string
	bank  *voice.Bank
	cache *cache.SheetCache
}

// NewLoader creates a loader rooted at dir. A leading ~ is expanded.
func NewLoader(dir string, bank *voice.Bank) (*Loader, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expanding asset dir: %w", err)
	}
	return &Loader{
		dir:   expanded,
		bank:  bank,
		cache: cache.New(cache.DefaultSizeLimit),
	}, nil
}

// Dir returns the expanded asset directory.
func (l *Loader) Dir() string {
	return l.dir
}

// LoadAll installs every voice sheet found in the directory plus the
// sound-effect sheet. Missing voices are skipped; it is an error only when
// no voice sheet exists at all. A missing sfx sheet is logged and skipped.
func (l *Loader) LoadAll() error {
	loaded := 0
	for _, vt := range voice.AllVoices() {
		if err := l.LoadVoice(vt); err != nil {
			if os.IsNotExist(err) {
				log.Debug("voice sheet not present", "voice", vt)
				continue
			}
			return fmt.Errorf("loading voice %s: %w", vt, err)
		}
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("%w: no voice sheets in %s", voice.ErrAssetMissing, l.dir)
	}

	if err := l.LoadSFX(); err != nil {
		if os.IsNotExist(err) {
			log.Debug("sfx sheet not present", "dir", l.dir)
		} else {
			return fmt.Errorf("loading sfx sheet: %w", err)
		}
	}

	log.Info("assets loaded", "dir", l.dir, "voices", loaded,
		"cached", humanize.Bytes(uint64(l.cache.Size())))
	return nil
}

// LoadVoice decodes one voice sheet and installs its letter and exclamation
// sprites. Returns an error satisfying os.IsNotExist when no sheet file
// exists for the voice.
func (l *Loader) LoadVoice(vt voice.VoiceType) error {
	sheet, err := l.loadSheet(vt.Filename())
	if err != nil {
		return err
	}

	letters := make(map[rune]*voice.SampleBuffer, 26)
	for r := 'a'; r <= 'z'; r++ {
		letters[r] = sheet.Slice(LetterOffset(r), LetterDuration)
	}

	specials := make(map[string]*voice.SampleBuffer, len(specialOffsets))
	for name, off := range specialOffsets {
		specials[name] = sheet.Slice(off, SpecialDuration)
	}

	l.bank.Install(vt, letters, specials)
	log.Debug("voice sheet installed", "voice", vt, "duration", sheet.Duration())
	return nil
}

// LoadSFX decodes the sound-effect sheet and installs every known effect.
func (l *Loader) LoadSFX() error {
	sheet, err := l.loadSheet(sfxStem)
	if err != nil {
		return err
	}

	effects := make(map[string]*voice.SampleBuffer, len(sfxIndex))
	for name, idx := range sfxIndex {
		effects[name] = sheet.Slice(time.Duration(idx)*SFXStride, SFXDuration)
	}

	l.bank.InstallSFX(effects)
	log.Debug("sfx sheet installed", "effects", len(effects))
	return nil
}

// loadSheet finds stem.wav or stem.wav.gz under the asset directory and
// returns its decoded audio, consulting the sheet cache first.
func (l *Loader) loadSheet(stem string) (*voice.SampleBuffer, error) {
	path, err := l.findSheet(stem)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := cache.Key(path, info.ModTime(), info.Size())
	if buf, ok := l.cache.Get(key); ok {
		return buf, nil
	}

	buf, err := decodeSheet(path)
	if err != nil {
		return nil, err
	}
	l.cache.Put(key, buf)

	log.Debug("sheet decoded", "path", path,
		"size", humanize.Bytes(uint64(info.Size())),
		"duration", buf.Duration())
	return buf, nil
}

// findSheet resolves the on-disk file for a sheet stem, preferring the plain
// container over the compressed one.
func (l *Loader) findSheet(stem string) (string, error) {
	for _, ext := range []string{".wav", ".wav.gz"} {
		path := filepath.Join(l.dir, stem+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &os.PathError{Op: "open", Path: filepath.Join(l.dir, stem+".wav"), Err: os.ErrNotExist}
}

// decodeSheet reads one sheet file into a sample buffer, transparently
// decompressing .gz containers.
func decodeSheet(path string) (*voice.SampleBuffer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("opening gzip container: %w", err)
		}
		raw, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("decompressing sheet: %w", err)
		}
		if err := gz.Close(); err != nil {
			return nil, fmt.Errorf("closing gzip container: %w", err)
		}
	}

	return decodeWAV(bytes.NewReader(raw))
}

// decodeWAV decodes a RIFF/WAVE stream into normalized float32 frames.
func decodeWAV(rs io.ReadSeeker) (*voice.SampleBuffer, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading pcm data: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels <= 0 || pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("wav file missing format header")
	}

	bitDepth := int(dec.BitDepth)
	if pcm.SourceBitDepth > 0 {
		bitDepth = pcm.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int(1) << (bitDepth - 1))

	frames := make([]float32, len(pcm.Data))
	for i, s := range pcm.Data {
		frames[i] = float32(s) / scale
	}

	return &voice.SampleBuffer{
		Frames:     frames,
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
	}, nil
}
