// Package main provides the entry point for the animalese CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/bleeptalk/animalese/ui"
	"github.com/bleeptalk/animalese/voice"
	"github.com/bleeptalk/animalese/voice/assets"
	"github.com/bleeptalk/animalese/voice/playback"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	voiceName  string
	pitchShift float64
	variation  float64
	volume     float64
	intonation float64
	assetDir   string
	watch      bool
	listVoices bool
	asQuestion bool
	asExcited  bool
	asFalling  bool

	rootCmd = &cobra.Command{
		Use:   "animalese [TEXT]",
		Short: "Speak text as cheerful gibberish",
		Long: paragraph(
			fmt.Sprintf("\nTurn text into %s: every letter plays a short pitched voice sprite, sentences get a rising or falling melody, and a trailing question mark makes the whole line curious.", keyword("musical babble")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	if asQuestion && asExcited || asQuestion && asFalling || asExcited && asFalling {
		return errors.New("pick at most one of --question, --excited, --statement")
	}

	// Unknown voice names get fuzzy suggestions before LoadConfig rejects
	// them with a plain error.
	if cmd.Flags().Changed("voice") {
		if _, err := voice.ParseVoiceType(voiceName); err != nil {
			return voiceSuggestionError(voiceName)
		}
	}
	return nil
}

// voiceSuggestionError builds an unknown-voice error with close matches.
func voiceSuggestionError(name string) error {
	names := voice.VoiceNames()
	matches := fuzzy.Find(strings.ToLower(name), names)

	if len(matches) > 0 {
		suggestions := make([]string, 0, 3)
		for i, m := range matches {
			if i == 3 {
				break
			}
			suggestions = append(suggestions, names[m.Index])
		}
		return fmt.Errorf("unknown voice %q (did you mean %s?)", name, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("unknown voice %q (available: %s)", name, strings.Join(names, ", "))
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	cfg, err := voice.LoadConfig()
	if err != nil {
		return err
	}

	bank := voice.NewBank()
	loader, err := assets.NewLoader(resolveAssetDir(cfg.AssetDir), bank)
	if err != nil {
		return err
	}
	if err := loader.LoadAll(); err != nil {
		return err
	}

	if listVoices {
		return printVoices(bank)
	}

	if cfg.WatchAssets {
		watcher, err := assets.NewWatcher(loader)
		if err != nil {
			log.Warn("asset watching unavailable", "err", err)
		} else {
			defer watcher.Close() //nolint:errcheck
		}
	}

	engine, scheduler, sink, err := buildEngine(cfg, bank)
	if err != nil {
		return err
	}
	defer sink.Close() //nolint:errcheck
	defer engine.Close()

	// if stdin is a pipe then speak from stdin. note that you can also
	// explicitly use a - to read from stdin.
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("unable to read from stdin: %w", err)
		}
		return speakAndDrain(engine, scheduler, string(b))
	}

	if len(args) > 0 {
		return speakAndDrain(engine, scheduler, strings.Join(args, " "))
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("no text to speak; pass TEXT or pipe it on stdin")
	}

	// Interactive typing mode.
	if _, err := ui.NewProgram(engine, bank.Voices()).Run(); err != nil {
		return fmt.Errorf("unable to run interactive mode: %w", err)
	}
	return nil
}

// buildEngine assembles the playback stack described by the config.
func buildEngine(cfg voice.Config, bank *voice.Bank) (*voice.Engine, *playback.Scheduler, *playback.OtoSink, error) {
	sink, err := playback.NewOtoSink(cfg.SampleRate)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening audio device: %w", err)
	}

	scheduler := playback.NewScheduler(sink, playback.Config{
		MaxVoices: cfg.MaxVoices,
		FadeIn:    cfg.FadeIn,
		FadeOut:   cfg.FadeOut,
	})

	policy, err := cfg.MissingPolicy()
	if err != nil {
		return nil, nil, nil, err
	}

	engine, err := voice.NewEngine(bank, scheduler, voice.WithMissingSymbolPolicy(policy))
	if err != nil {
		return nil, nil, nil, err
	}

	profile, err := cfg.ToProfile()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := engine.SetProfile(profile); err != nil {
		return nil, nil, nil, err
	}
	return engine, scheduler, sink, nil
}

// speakAndDrain voices one utterance with the selected preset and waits for
// playback to finish. Ctrl-C fades everything out instead of cutting.
func speakAndDrain(engine *voice.Engine, scheduler *playback.Scheduler, text string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	speak := engine.Speak
	switch {
	case asQuestion:
		speak = engine.SpeakQuestion
	case asExcited:
		speak = engine.SpeakExcited
	case asFalling:
		speak = engine.SpeakStatement
	}

	err := speak(ctx, text)
	if err != nil && !errors.Is(err, voice.ErrAssetMissing) && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, voice.ErrAssetMissing) {
		log.Warn("some symbols had no sprite", "err", err)
	}

	drain(ctx, scheduler)
	return nil
}

// drain polls until every scheduled sound has finished or the context ends.
func drain(ctx context.Context, scheduler *playback.Scheduler) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(10 * time.Second)

	for {
		select {
		case <-ctx.Done():
			scheduler.StopAll()
			return
		case <-deadline:
			log.Warn("playback drain timed out")
			return
		case <-ticker.C:
			scheduler.Reap()
			if scheduler.LiveCount() == 0 && scheduler.FadingCount() == 0 {
				return
			}
		}
	}
}

// printVoices lists the voices found in the asset directory.
func printVoices(bank *voice.Bank) error {
	voices := bank.Voices()
	if len(voices) == 0 {
		return errors.New("no voices loaded")
	}
	for _, v := range voices {
		fmt.Println(v)
	}
	return nil
}

// resolveAssetDir picks the asset directory: the configured one, an assets/
// dir next to the working directory, or the user data dir.
func resolveAssetDir(configured string) string {
	if configured != "" {
		return configured
	}
	if st, err := os.Stat("assets"); err == nil && st.IsDir() {
		return "assets"
	}

	scope := gap.NewScope(gap.User, "animalese")
	if dirs, err := scope.DataDirs(); err == nil && len(dirs) > 0 {
		return filepath.Join(dirs[0], "assets")
	}
	return "assets"
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&voiceName, "voice", "V", "f1", "voice preset (f1-f4, m1-m4)")
	rootCmd.Flags().Float64VarP(&pitchShift, "pitch", "p", 0, "pitch shift in semitones (-12 to 12)")
	rootCmd.Flags().Float64Var(&variation, "variation", 0.8, "random pitch variation in semitones (0 to 2)")
	rootCmd.Flags().Float64Var(&volume, "volume", 0.65, "volume (0.0 to 1.0)")
	rootCmd.Flags().Float64VarP(&intonation, "intonation", "i", 0, "sentence melody (-1 falling to 1 rising)")
	rootCmd.Flags().StringVarP(&assetDir, "assets", "a", "", "voice sprite directory")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload sprite sheets when they change on disk")
	rootCmd.Flags().BoolVarP(&listVoices, "list", "l", false, "list loaded voices and exit")
	rootCmd.Flags().BoolVarP(&asQuestion, "question", "q", false, "speak with question intonation")
	rootCmd.Flags().BoolVarP(&asExcited, "excited", "e", false, "speak excitedly")
	rootCmd.Flags().BoolVar(&asFalling, "statement", false, "speak with falling statement intonation")

	// Config bindings
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("pitch_shift", rootCmd.Flags().Lookup("pitch"))
	_ = viper.BindPFlag("pitch_variation", rootCmd.Flags().Lookup("variation"))
	_ = viper.BindPFlag("volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("intonation", rootCmd.Flags().Lookup("intonation"))
	_ = viper.BindPFlag("asset_dir", rootCmd.Flags().Lookup("assets"))
	_ = viper.BindPFlag("watch_assets", rootCmd.Flags().Lookup("watch"))

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "animalese")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "animalese")}, dirs...)
	}

	if c := os.Getenv("ANIMALESE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("animalese")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "animalese.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
