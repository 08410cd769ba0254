package frontend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/jtalk/internal/subprocess"
	"github.com/dgnsrekt/jtalk/tts"
	"github.com/dgnsrekt/jtalk/tts/voice"
)

// DefaultMeCabCommand is run when no analyzer command is configured.
const DefaultMeCabCommand = "mecab"

var (
	// ErrNotLoaded is returned by Analyze before a dictionary was loaded.
	ErrNotLoaded = errors.New("dictionary not loaded")
	// ErrMalformedOutput is returned for analyzer output that is not
	// "surface<TAB>features".
	ErrMalformedOutput = errors.New("malformed analyzer output")
)

// CommandRunner runs an external program. *subprocess.Runner implements it.
type CommandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// MeCab analyzes text by running the mecab command against a compiled
// dictionary. It implements tts.Analyzer.
type MeCab struct {
	command []string
	runner  CommandRunner
	logger  *log.Logger

	mu     sync.Mutex
	dicDir string
	last   tts.FeatureTable
}

// MeCabOption configures a MeCab analyzer.
type MeCabOption func(*MeCab)

// WithRunner replaces the process runner.
func WithRunner(r CommandRunner) MeCabOption {
	return func(m *MeCab) {
		if r != nil {
			m.runner = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) MeCabOption {
	return func(m *MeCab) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMeCab creates an analyzer for the command line command. An empty
// command selects DefaultMeCabCommand.
func NewMeCab(command string, opts ...MeCabOption) (*MeCab, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultMeCabCommand
	}
	words, err := subprocess.ParseCommand(command)
	if err != nil {
		return nil, err
	}

	m := &MeCab{
		command: words,
		runner:  subprocess.NewRunner(0),
		logger:  log.Default().WithPrefix("mecab"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Load checks the dictionary in dicDir and uses it for later calls.
func (m *MeCab) Load(dicDir string) error {
	if err := voice.CheckDictionary(dicDir); err != nil {
		return err
	}
	m.mu.Lock()
	m.dicDir = dicDir
	m.mu.Unlock()
	m.logger.Debug("Dictionary loaded", "dir", dicDir)
	return nil
}

// Analyze runs the analyzer on text and returns one feature row per word.
func (m *MeCab) Analyze(ctx context.Context, text string) (tts.FeatureTable, error) {
	m.mu.Lock()
	dicDir := m.dicDir
	m.mu.Unlock()
	if dicDir == "" {
		return nil, ErrNotLoaded
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	args := append(append([]string(nil), m.command[1:]...), "-d", dicDir)
	out, err := m.runner.Run(ctx, []byte(text+"\n"), m.command[0], args...)
	if err != nil {
		return nil, err
	}
	rows, err := ParseMeCabOutput(out)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.last = rows
	m.mu.Unlock()
	m.logger.Debug("Text analyzed", "words", len(rows))
	return rows, nil
}

// ParseMeCabOutput reads "surface<TAB>features" lines up to EOS into
// "surface,features" rows.
func ParseMeCabOutput(out []byte) (tts.FeatureTable, error) {
	var rows tts.FeatureTable
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "EOS" {
			break
		}
		if line == "" {
			continue
		}
		surface, features, ok := strings.Cut(line, "\t")
		if !ok || surface == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedOutput, line)
		}
		rows = append(rows, surface+","+features)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analyzer output: %w", err)
	}
	return rows, nil
}

// Refresh drops the result of the last call.
func (m *MeCab) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = nil
}

// Clear unloads the dictionary.
func (m *MeCab) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dicDir = ""
	m.last = nil
}

// Command returns the parsed command line.
func (m *MeCab) Command() []string {
	return append([]string(nil), m.command...)
}
