// Package mock provides an in-process synthesis engine for tests and demos.
// It writes a plain tone whose length follows the label count and frame
// period, so playback timing behaves like a real voice.
package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dgnsrekt/jtalk/tts/engines"
	"github.com/dgnsrekt/jtalk/tts/voice"
)

var (
	errNotConfigured = errors.New("mock engine is not configured")
	errNotLoaded     = errors.New("mock engine has no voice loaded")
)

// Calls counts the invocations of each engine method.
type Calls struct {
	Configure  int
	Load       int
	Synthesize int
	Refresh    int
	Clear      int
}

// MockEngine implements engines.Engine.
type MockEngine struct {
	mu sync.Mutex

	settings   engines.Settings
	streams    int
	assets     voice.Assets
	configured bool
	loaded     bool

	framesPerLabel int
	toneHz         float64
	delay          time.Duration

	// Control for testing
	failLoad       error
	failSynthesize error

	calls      Calls
	lastLabels []string
	lastPitch  int
	lastPath   string
}

// New creates a new two-stream mock engine.
func New() *MockEngine {
	return &MockEngine{
		streams:        2,
		framesPerLabel: 2,
		toneHz:         220,
	}
}

// Configure stores the engine settings.
func (e *MockEngine) Configure(settings engines.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls.Configure++
	if settings.SamplingRate <= 0 {
		return fmt.Errorf("invalid sampling rate %d", settings.SamplingRate)
	}
	e.settings = settings
	e.configured = true
	return nil
}

// Streams returns the configured stream count.
func (e *MockEngine) Streams() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streams
}

// Load records the voice assets.
func (e *MockEngine) Load(assets voice.Assets) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls.Load++
	if !e.configured {
		return errNotConfigured
	}
	if e.failLoad != nil {
		return e.failLoad
	}
	e.assets = assets
	e.loaded = true
	return nil
}

// Synthesize writes a mono 16-bit WAV of len(labels) * frames * pitchPeriod samples.
func (e *MockEngine) Synthesize(ctx context.Context, labels []string, pitchPeriod int, w io.WriteSeeker) error {
	e.mu.Lock()
	e.calls.Synthesize++
	e.lastLabels = append([]string(nil), labels...)
	e.lastPitch = pitchPeriod
	if f, ok := w.(*os.File); ok {
		e.lastPath = f.Name()
	}
	loaded, failure, delay := e.loaded, e.failSynthesize, e.delay
	rate, frames, tone := e.settings.SamplingRate, e.framesPerLabel, e.toneHz
	e.mu.Unlock()

	if !loaded {
		return errNotLoaded
	}
	if failure != nil {
		return failure
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	n := len(labels) * frames * pitchPeriod
	data := make([]int, n)
	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*tone*float64(i)/float64(rate)))
	}

	enc := wav.NewEncoder(w, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish wav: %w", err)
	}
	return nil
}

// Refresh drops per-utterance state.
func (e *MockEngine) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls.Refresh++
}

// Clear unloads the voice. Safe on a partially loaded engine.
func (e *MockEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls.Clear++
	e.loaded = false
	e.assets = voice.Assets{}
}

// Test control methods

// SetStreams sets the number of active streams.
func (e *MockEngine) SetStreams(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.streams = n
}

// SetFramesPerLabel sets the output length per label.
func (e *MockEngine) SetFramesPerLabel(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.framesPerLabel = n
}

// SetDelay sets the simulated synthesis time.
func (e *MockEngine) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// SetLoadFailure makes Load fail with err. Nil restores normal operation.
func (e *MockEngine) SetLoadFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failLoad = err
}

// SetSynthesizeFailure makes Synthesize fail with err. Nil restores normal operation.
func (e *MockEngine) SetSynthesizeFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failSynthesize = err
}

// Calls returns the invocation counters.
func (e *MockEngine) Calls() Calls {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Settings returns the last configured settings.
func (e *MockEngine) Settings() engines.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Assets returns the loaded assets.
func (e *MockEngine) Assets() voice.Assets {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assets
}

// Last returns the labels, frame period and artifact path of the last call.
func (e *MockEngine) Last() (labels []string, pitchPeriod int, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastLabels, e.lastPitch, e.lastPath
}
