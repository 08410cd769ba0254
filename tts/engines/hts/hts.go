// Package hts drives the hts_engine command line synthesizer. Each utterance
// runs a fresh process that reads a label file and writes a WAV file.
package hts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/go-audio/wav"

	"github.com/dgnsrekt/jtalk/internal/subprocess"
	"github.com/dgnsrekt/jtalk/tts/engines"
	"github.com/dgnsrekt/jtalk/tts/voice"
)

// DefaultCommand is run when no engine command is configured.
const DefaultCommand = "hts_engine"

var (
	errNotConfigured = errors.New("hts engine is not configured")
	errNotLoaded     = errors.New("hts engine has no voice loaded")
	// ErrInvalidOutput is returned when the engine output is not a WAV file.
	ErrInvalidOutput = errors.New("engine wrote no valid wav")
)

// Runner runs an external program. *subprocess.Runner implements it.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// Engine implements engines.Engine on top of the hts_engine command.
type Engine struct {
	command []string
	runner  Runner
	logger  *log.Logger
	streams int
	tempDir string

	mu         sync.Mutex
	settings   engines.Settings
	configured bool
	assets     voice.Assets
	loaded     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStreams sets the number of parameter streams of the voice. Values
// other than 2 and 3 are ignored.
func WithStreams(n int) Option {
	return func(e *Engine) {
		if n == 2 || n == 3 {
			e.streams = n
		}
	}
}

// WithTempDir sets where label and output files are staged.
func WithTempDir(dir string) Option {
	return func(e *Engine) {
		e.tempDir = dir
	}
}

// New creates an engine for the command line command. An empty command
// selects DefaultCommand.
func New(command string, opts ...Option) (*Engine, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	words, err := subprocess.ParseCommand(command)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		command: words,
		runner:  subprocess.NewRunner(0),
		logger:  log.Default().WithPrefix("hts"),
		streams: 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Configure stores the numeric settings.
func (e *Engine) Configure(settings engines.Settings) error {
	if settings.SamplingRate <= 0 {
		return fmt.Errorf("invalid sampling rate %d", settings.SamplingRate)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = settings
	e.configured = true
	return nil
}

// Streams returns the number of parameter streams.
func (e *Engine) Streams() int {
	return e.streams
}

// Load checks that every model file can be opened and keeps the paths.
func (e *Engine) Load(assets voice.Assets) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.configured {
		return errNotConfigured
	}
	if e.streams < 3 {
		assets.Streams[voice.StreamLPF] = voice.StreamFiles{}
	}
	for _, f := range assets.Files() {
		r, err := os.Open(f.Path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.Role, err)
		}
		_ = r.Close()
	}
	e.assets = assets
	e.loaded = true
	e.logger.Debug("Voice loaded", "dir", assets.VoiceDir, "streams", e.streams)
	return nil
}

// Synthesize writes labels to a file, runs the engine and copies the
// resulting WAV into w.
func (e *Engine) Synthesize(ctx context.Context, labels []string, pitchPeriod int, w io.WriteSeeker) error {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if !loaded {
		return errNotLoaded
	}

	dir, err := os.MkdirTemp(e.tempDir, "hts-*")
	if err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	labelPath := filepath.Join(dir, "utterance.lab")
	outPath := filepath.Join(dir, "utterance.wav")
	if err := os.WriteFile(labelPath, []byte(strings.Join(labels, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}

	args := append(append([]string(nil), e.command[1:]...), e.Args(labelPath, outPath, pitchPeriod)...)
	if _, err := e.runner.Run(ctx, nil, e.command[0], args...); err != nil {
		return err
	}

	n, err := copyWAV(w, outPath)
	if err != nil {
		return err
	}
	e.logger.Debug("Waveform generated", "labels", len(labels), "size", humanize.Bytes(uint64(n)))
	return nil
}

// Args returns the engine flags for one run.
func (e *Engine) Args(labelPath, outPath string, pitchPeriod int) []string {
	e.mu.Lock()
	s, a := e.settings, e.assets
	e.mu.Unlock()

	itoa := strconv.Itoa
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	// -z is never passed: it would make hts_engine play the waveform itself.
	args := []string{
		"-s", itoa(s.SamplingRate),
		"-p", itoa(pitchPeriod),
		"-a", ftoa(s.Alpha),
		"-g", itoa(s.Stage),
		"-b", ftoa(s.Beta),
		"-u", ftoa(s.UVThreshold),
		"-jm", ftoa(s.GVWeights[voice.StreamMGC]),
		"-jf", ftoa(s.GVWeights[voice.StreamLF0]),
	}
	if s.UseLogGain {
		args = append(args, "-l")
	}

	args = append(args, "-td", a.DurationTree, "-md", a.DurationPDF)

	mgc, lf0, lpf := a.Streams[voice.StreamMGC], a.Streams[voice.StreamLF0], a.Streams[voice.StreamLPF]
	args = append(args, "-tm", mgc.Tree, "-mm", mgc.PDF)
	args = append(args, "-tf", lf0.Tree, "-mf", lf0.PDF)
	for _, win := range mgc.Windows {
		args = append(args, "-dm", win)
	}
	for _, win := range lf0.Windows {
		args = append(args, "-df", win)
	}
	if e.streams == 3 && lpf.PDF != "" {
		args = append(args, "-jl", ftoa(s.GVWeights[voice.StreamLPF]))
		args = append(args, "-tl", lpf.Tree, "-ml", lpf.PDF)
		for _, win := range lpf.Windows {
			args = append(args, "-dl", win)
		}
	}

	gvFlags := [3][2]string{{"-cm", "-em"}, {"-cf", "-ef"}, {"-cl", "-el"}}
	for i, sf := range a.Streams {
		if !sf.HasGV() || (voice.Stream(i) == voice.StreamLPF && e.streams < 3) {
			continue
		}
		args = append(args, gvFlags[i][0], sf.GVPDF)
		if sf.GVTree != "" {
			args = append(args, gvFlags[i][1], sf.GVTree)
		}
	}
	if a.GVSwitch != "" {
		args = append(args, "-k", a.GVSwitch)
	}

	return append(args, "-ow", outPath, labelPath)
}

// copyWAV validates the file at path and copies it to w.
func copyWAV(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	defer func() { _ = f.Close() }()

	if !wav.NewDecoder(f).IsValidFile() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidOutput, filepath.Base(path))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("failed to copy waveform: %w", err)
	}
	return n, nil
}

// Refresh is a no-op; every run uses fresh files.
func (e *Engine) Refresh() {}

// Clear forgets the loaded voice. Safe on a partially loaded engine.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loaded = false
	e.assets = voice.Assets{}
}

// Command returns the parsed command line.
func (e *Engine) Command() []string {
	return append([]string(nil), e.command...)
}
