// Package main provides the entry point for the jtalk CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/jtalk/internal/paths"
	"github.com/dgnsrekt/jtalk/internal/subprocess"
	"github.com/dgnsrekt/jtalk/tts"
	"github.com/dgnsrekt/jtalk/tts/audio"
	"github.com/dgnsrekt/jtalk/tts/engines"
	"github.com/dgnsrekt/jtalk/tts/engines/hts"
	"github.com/dgnsrekt/jtalk/tts/engines/mock"
	"github.com/dgnsrekt/jtalk/tts/frontend"
	"github.com/dgnsrekt/jtalk/tts/voice"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	configDirs []string
	voiceDir   string
	dicDir     string
	engineName string
	audioMode  string
	pitch      int

	rootCmd = &cobra.Command{
		Use:   "jtalk",
		Short: "Speak Japanese text with an HTS voice",
		Long: paragraph(
			fmt.Sprintf("\nSpeak Japanese text %s.", keyword("with an HTS voice")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
	}
)

// options are the resolved settings of one CLI run.
type options struct {
	VoiceDir        string
	DicDir          string
	WorkDir         string
	Pitch           int
	AnalyzerCommand string
	EngineName      string
	EngineCommand   string
	EngineStreams   int
	EngineTimeout   time.Duration
	AudioMode       audio.ContextType
	PollInterval    time.Duration
	Params          tts.Params
}

func validateOptions(cmd *cobra.Command) error {
	// config and man work without a voice
	if name := cmd.Name(); name == "config" || name == "man" {
		return nil
	}

	if configFile != "" {
		viper.SetConfigFile(paths.Expand(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if p := viper.GetInt("pitch"); p < 0 {
		return fmt.Errorf("pitch must be positive, got %d", p)
	}
	switch name := viper.GetString("engine.name"); name {
	case "hts", "mock":
	default:
		return fmt.Errorf("unknown engine %q: use hts or mock", name)
	}
	if _, err := audio.ParseContextType(viper.GetString("audio.mode")); err != nil {
		return err
	}
	return nil
}

func loadOptions() (options, error) {
	params, err := tts.LoadParamsFromViper(viper.GetViper())
	if err != nil {
		return options{}, err
	}
	if err := tts.ApplyEnv(&params); err != nil {
		return options{}, err
	}
	if err := params.Validate(); err != nil {
		return options{}, err
	}
	mode, err := audio.ParseContextType(viper.GetString("audio.mode"))
	if err != nil {
		return options{}, err
	}

	o := options{
		VoiceDir:        paths.Expand(viper.GetString("voice_dir")),
		DicDir:          paths.Expand(viper.GetString("dic_dir")),
		WorkDir:         paths.Expand(viper.GetString("work_dir")),
		Pitch:           viper.GetInt("pitch"),
		AnalyzerCommand: viper.GetString("analyzer.command"),
		EngineName:      viper.GetString("engine.name"),
		EngineCommand:   viper.GetString("engine.command"),
		EngineStreams:   viper.GetInt("engine.streams"),
		EngineTimeout:   viper.GetDuration("engine.timeout"),
		AudioMode:       mode,
		PollInterval:    viper.GetDuration("audio.poll_interval"),
		Params:          params,
	}
	if o.VoiceDir == "" {
		return o, fmt.Errorf("no voice directory: set voice_dir in %s or pass --voice", viper.ConfigFileUsed())
	}
	if o.DicDir == "" {
		return o, fmt.Errorf("no dictionary directory: set dic_dir in %s or pass --dic", viper.ConfigFileUsed())
	}
	return o, nil
}

// newEngine builds the configured synthesis engine.
func newEngine(o options, runner *subprocess.Runner) (engines.Engine, error) {
	if o.EngineName == "mock" {
		return mock.New(), nil
	}
	return hts.New(o.EngineCommand,
		hts.WithRunner(runner),
		hts.WithStreams(o.EngineStreams),
		hts.WithTempDir(o.WorkDir),
		hts.WithLogger(log.Default().WithPrefix("hts")))
}

// newSession builds the stages and brings an orchestrator to Ready.
func newSession(o options) (*tts.Orchestrator, error) {
	runner := subprocess.NewRunner(o.EngineTimeout)

	analyzer, err := frontend.NewMeCab(o.AnalyzerCommand,
		frontend.WithRunner(runner),
		frontend.WithLogger(log.Default().WithPrefix("mecab")))
	if err != nil {
		return nil, fmt.Errorf("invalid analyzer command: %w", err)
	}
	engine, err := newEngine(o, runner)
	if err != nil {
		return nil, fmt.Errorf("invalid engine command: %w", err)
	}

	orch := tts.NewOrchestrator(frontend.NewStages(analyzer, engine),
		tts.WithWorkDir(o.WorkDir),
		tts.WithPollInterval(o.PollInterval),
		tts.WithAudioFactory(func(format audio.Format, bufferSamples int) (audio.Context, error) {
			return audio.NewContext(o.AudioMode, format, bufferSamples)
		}),
	)

	assets, err := voice.Resolve(o.VoiceDir, o.DicDir)
	if err != nil {
		return nil, err
	}
	if err := orch.Init(assets, o.Params); err != nil {
		return nil, err
	}
	return orch, nil
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

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringVarP(&voiceDir, "voice", "v", "", "HTS voice directory")
	flags.StringVarP(&dicDir, "dic", "d", "", "MeCab dictionary directory")
	flags.StringVarP(&engineName, "engine", "e", "hts", "synthesis engine (hts or mock)")
	flags.StringVar(&audioMode, "audio", "auto", "audio output (auto, device or mock)")
	flags.IntVarP(&pitch, "pitch", "p", tts.DefaultPitchPeriod, "frame period in samples, larger is lower and slower")

	// Config bindings
	_ = viper.BindPFlag("voice_dir", flags.Lookup("voice"))
	_ = viper.BindPFlag("dic_dir", flags.Lookup("dic"))
	_ = viper.BindPFlag("engine.name", flags.Lookup("engine"))
	_ = viper.BindPFlag("audio.mode", flags.Lookup("audio"))
	_ = viper.BindPFlag("pitch", flags.Lookup("pitch"))

	viper.SetDefault("pitch", tts.DefaultPitchPeriod)
	viper.SetDefault("work_dir", os.TempDir())
	viper.SetDefault("analyzer.command", frontend.DefaultMeCabCommand)
	viper.SetDefault("engine.name", "hts")
	viper.SetDefault("engine.command", hts.DefaultCommand)
	viper.SetDefault("engine.streams", 2)
	viper.SetDefault("engine.timeout", subprocess.DefaultTimeout)
	viper.SetDefault("audio.mode", "auto")
	viper.SetDefault("audio.poll_interval", audio.DefaultPollInterval)

	rootCmd.AddCommand(sayCmd, replCmd, checkCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "jtalk")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "jtalk")}, dirs...)
	}

	if c := os.Getenv("JTALK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}
	configDirs = dirs

	viper.SetConfigName("jtalk")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("jtalk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
	}
}
