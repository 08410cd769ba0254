package tts

import (
	"fmt"
	"math"

	"github.com/caarlos0/env/v11"

	"github.com/dgnsrekt/jtalk/tts/engines"
)

// DefaultPitchPeriod is the frame period used when a caller does not pick one.
const DefaultPitchPeriod = 240

// Params contains the numeric synthesis settings of a session. A Params value
// is fixed once it has been handed to Init.
type Params struct {
	// Output sampling rate in Hz.
	SamplingRate int `yaml:"sampling_rate" env:"JTALK_SAMPLING_RATE"`
	// Spectral stage, gamma = -1/stage. Zero selects mel-cepstrum.
	Stage int `yaml:"stage" env:"JTALK_STAGE"`
	// Playback buffer length in samples.
	AudioBufferSize int `yaml:"audio_buff_size" env:"JTALK_AUDIO_BUFF_SIZE"`
	// All-pass constant of the mel-cepstral analysis.
	Alpha float64 `yaml:"alpha" env:"JTALK_ALPHA"`
	// Postfilter coefficient.
	Beta float64 `yaml:"beta" env:"JTALK_BETA"`
	// Voiced/unvoiced decision threshold.
	UVThreshold float64 `yaml:"uv_threshold" env:"JTALK_UV_THRESHOLD"`

	// Global variance weights per stream.
	GVWeightMGC float64 `yaml:"gv_weight_mgc" env:"JTALK_GV_WEIGHT_MGC"`
	GVWeightLF0 float64 `yaml:"gv_weight_lf0" env:"JTALK_GV_WEIGHT_LF0"`
	GVWeightLPF float64 `yaml:"gv_weight_lpf" env:"JTALK_GV_WEIGHT_LPF"`

	// UseLogGain switches the engine to log gain. Off for Open JTalk voices.
	UseLogGain bool `yaml:"use_log_gain" env:"JTALK_USE_LOG_GAIN"`
}

// DefaultParams returns Params with the stock Open JTalk voice settings.
func DefaultParams() Params {
	return Params{
		SamplingRate:    48000,
		Stage:           0,
		AudioBufferSize: 48000,
		Alpha:           0.5,
		Beta:            0.8,
		UVThreshold:     0.5,
		GVWeightMGC:     1.0,
		GVWeightLF0:     1.0,
		GVWeightLPF:     1.0,
	}
}

// Validate checks type and range of every field.
func (p Params) Validate() error {
	if p.SamplingRate <= 0 || p.SamplingRate > 192000 {
		return fmt.Errorf("%w: sampling_rate must be in (0, 192000], got %d", ErrInvalidConfig, p.SamplingRate)
	}
	if p.Stage < 0 {
		return fmt.Errorf("%w: stage must not be negative, got %d", ErrInvalidConfig, p.Stage)
	}
	if p.AudioBufferSize <= 0 {
		return fmt.Errorf("%w: audio_buff_size must be positive, got %d", ErrInvalidConfig, p.AudioBufferSize)
	}
	if !(p.Alpha >= 0 && p.Alpha < 1) {
		return fmt.Errorf("%w: alpha must be in [0, 1), got %v", ErrInvalidConfig, p.Alpha)
	}
	if !inRange(p.Beta, -0.8, 0.8) {
		return fmt.Errorf("%w: beta must be in [-0.8, 0.8], got %v", ErrInvalidConfig, p.Beta)
	}
	if !inRange(p.UVThreshold, 0, 1) {
		return fmt.Errorf("%w: uv_threshold must be in [0, 1], got %v", ErrInvalidConfig, p.UVThreshold)
	}
	for name, w := range map[string]float64{
		"gv_weight_mgc": p.GVWeightMGC,
		"gv_weight_lf0": p.GVWeightLF0,
		"gv_weight_lpf": p.GVWeightLPF,
	} {
		if math.IsNaN(w) || w < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, name, w)
		}
	}
	return nil
}

// EngineSettings converts p into the engine's settings.
func (p Params) EngineSettings() engines.Settings {
	return engines.Settings{
		SamplingRate:    p.SamplingRate,
		Stage:           p.Stage,
		AudioBufferSize: p.AudioBufferSize,
		Alpha:           p.Alpha,
		Beta:            p.Beta,
		UVThreshold:     p.UVThreshold,
		UseLogGain:      p.UseLogGain,
		GVWeights:       [3]float64{p.GVWeightMGC, p.GVWeightLF0, p.GVWeightLPF},
	}
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// ParamsFromOptions merges a loosely typed options object over the defaults.
// Integer fields only accept integral numbers; values of the wrong type are
// ignored and the default is kept.
func ParamsFromOptions(opts map[string]any) Params {
	p := DefaultParams()
	if opts == nil {
		return p
	}

	setInt := func(key string, dst *int) {
		if v, ok := asInt(opts[key]); ok {
			*dst = v
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := asFloat(opts[key]); ok {
			*dst = v
		}
	}

	setInt("sampling_rate", &p.SamplingRate)
	setInt("stage", &p.Stage)
	setInt("audio_buff_size", &p.AudioBufferSize)
	setFloat("alpha", &p.Alpha)
	setFloat("beta", &p.Beta)
	setFloat("uv_threshold", &p.UVThreshold)
	setFloat("gv_weight_mgc", &p.GVWeightMGC)
	setFloat("gv_weight_lf0", &p.GVWeightLF0)
	setFloat("gv_weight_lpf", &p.GVWeightLPF)
	if v, ok := opts["use_log_gain"].(bool); ok {
		p.UseLogGain = v
	}
	return p
}

// ApplyEnv overlays JTALK_* environment variables onto p.
func ApplyEnv(p *Params) error {
	if err := env.Parse(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
