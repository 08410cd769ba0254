// Package engines defines the contract between the orchestrator and the
// statistical parametric synthesis engines.
package engines

import (
	"context"
	"io"

	"github.com/dgnsrekt/jtalk/tts/voice"
)

// Settings are the numeric engine parameters fixed at initialization.
type Settings struct {
	SamplingRate    int
	Stage           int
	AudioBufferSize int
	Alpha           float64
	Beta            float64
	UVThreshold     float64
	UseLogGain      bool
	// GVWeights is indexed by voice.Stream.
	GVWeights [3]float64
}

// Engine turns a label sequence into a WAV waveform.
//
// Configure is called once, Load once per successful voice load, and
// Synthesize once per utterance followed by Refresh. Clear releases the loaded
// models and may be called on a partially loaded engine.
type Engine interface {
	// Configure applies numeric settings. Called before Load.
	Configure(settings Settings) error

	// Streams reports the number of active parameter streams (2 or 3).
	// The low-pass stream is only loaded when this returns 3.
	Streams() int

	// Load reads the acoustic model files.
	Load(assets voice.Assets) error

	// Synthesize generates a waveform for labels with the given frame period
	// and writes it as a WAV file to w.
	Synthesize(ctx context.Context, labels []string, pitchPeriod int, w io.WriteSeeker) error

	// Refresh drops per-utterance state.
	Refresh()

	// Clear releases every loaded model.
	Clear()
}

