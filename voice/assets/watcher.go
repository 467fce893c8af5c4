package assets

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/bleeptalk/animalese/voice"
)

// debounceWindow coalesces the event bursts editors emit while saving a
// sheet, so one save triggers one reload.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads sprite sheets when their files change on disk, so a voice
// can be re-recorded while the program keeps running.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching the loader's asset directory.
func NewWatcher(loader *Loader) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(loader.Dir()); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		loader:  loader,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.run()

	log.Debug("watching asset dir", "dir", loader.Dir())
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// run drains events and reloads changed sheets after a quiet period.
func (w *Watcher) run() {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			stem, ok := sheetStem(event.Name)
			if !ok {
				continue
			}
			log.Debug("asset changed", "file", event.Name, "event", event.Op)
			pending[stem] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			for stem := range pending {
				w.reload(stem)
				delete(pending, stem)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debug("asset watcher error", "err", err)
		}
	}
}

// reload re-installs one sheet by stem.
func (w *Watcher) reload(stem string) {
	if stem == sfxStem {
		if err := w.loader.LoadSFX(); err != nil {
			log.Warn("reloading sfx sheet", "err", err)
		} else {
			log.Info("sfx sheet reloaded")
		}
		return
	}

	vt, err := voice.ParseVoiceType(stem)
	if err != nil {
		return
	}
	if err := w.loader.LoadVoice(vt); err != nil {
		log.Warn("reloading voice sheet", "voice", vt, "err", err)
		return
	}
	log.Info("voice sheet reloaded", "voice", vt)
}

// sheetStem extracts the sheet stem from a path and reports whether the file
// looks like a sheet we load.
func sheetStem(path string) (string, bool) {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, ".wav.gz"):
		base = strings.TrimSuffix(base, ".wav.gz")
	case strings.HasSuffix(base, ".wav"):
		base = strings.TrimSuffix(base, ".wav")
	default:
		return "", false
	}

	if base == sfxStem {
		return base, true
	}
	if _, err := voice.ParseVoiceType(base); err == nil {
		return base, true
	}
	return "", false
}
