package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# voice preset: f1-f4 (female register) or m1-m4 (male register)
voice: "f1"
# fixed pitch shift in semitones (-12 to 12)
pitch_shift: 0
# random per-letter pitch variation in semitones (0 to 2)
pitch_variation: 0.8
# volume (0.0 to 1.0)
volume: 0.65
# sentence melody: -1 falls, 0 flat, 1 rises
intonation: 0

# directory holding the voice sprite sheets (f1.wav ... m4.wav, sfx.wav)
# asset_dir: "~/animalese-voices"
# reload sprite sheets when they change on disk
watch_assets: false

# what to do with letters the voice has no sprite for: skip or pause
missing_symbol: "skip"

playback:
  # output sample rate
  sample_rate: 44100
  # how many sounds may overlap before the oldest is faded out
  max_voices: 8
  # ramp applied to every sound's start
  fade_in: 5ms
  # ramp used when a sound is cut short
  fade_out: 10ms
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the animalese config file",
	Long:    paragraph(fmt.Sprintf("\n%s the animalese config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("animalese config\nanimalese config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Animalese", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
