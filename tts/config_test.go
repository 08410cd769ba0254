package tts

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// TestDefaultParams tests that the default parameters are valid.
func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if err := p.Validate(); err != nil {
		t.Errorf("Default params should be valid: %v", err)
	}
	if p.SamplingRate != 48000 {
		t.Errorf("Default sampling rate should be 48000, got %d", p.SamplingRate)
	}
	if p.AudioBufferSize != 48000 {
		t.Errorf("Default buffer should be 48000 samples, got %d", p.AudioBufferSize)
	}
	if p.UseLogGain {
		t.Error("Log gain should be off by default")
	}
}

// TestParamsValidation tests range checks.
func TestParamsValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Params)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid params",
			modify: func(p *Params) {},
		},
		{
			name:    "zero sampling rate",
			modify:  func(p *Params) { p.SamplingRate = 0 },
			wantErr: true,
			errMsg:  "sampling_rate",
		},
		{
			name:    "sampling rate too high",
			modify:  func(p *Params) { p.SamplingRate = 384000 },
			wantErr: true,
			errMsg:  "sampling_rate",
		},
		{
			name:    "negative stage",
			modify:  func(p *Params) { p.Stage = -1 },
			wantErr: true,
			errMsg:  "stage",
		},
		{
			name:    "negative buffer",
			modify:  func(p *Params) { p.AudioBufferSize = -1 },
			wantErr: true,
			errMsg:  "audio_buff_size",
		},
		{
			name:    "zero buffer",
			modify:  func(p *Params) { p.AudioBufferSize = 0 },
			wantErr: true,
			errMsg:  "audio_buff_size",
		},
		{
			name:   "alpha at zero",
			modify: func(p *Params) { p.Alpha = 0 },
		},
		{
			name:    "alpha at one",
			modify:  func(p *Params) { p.Alpha = 1 },
			wantErr: true,
			errMsg:  "alpha",
		},
		{
			name:    "alpha above one",
			modify:  func(p *Params) { p.Alpha = 1.5 },
			wantErr: true,
			errMsg:  "alpha",
		},
		{
			name:    "alpha NaN",
			modify:  func(p *Params) { p.Alpha = math.NaN() },
			wantErr: true,
			errMsg:  "alpha",
		},
		{
			name:   "beta at lower bound",
			modify: func(p *Params) { p.Beta = -0.8 },
		},
		{
			name:    "beta out of range",
			modify:  func(p *Params) { p.Beta = 0.9 },
			wantErr: true,
			errMsg:  "beta",
		},
		{
			name:    "uv threshold negative",
			modify:  func(p *Params) { p.UVThreshold = -0.1 },
			wantErr: true,
			errMsg:  "uv_threshold",
		},
		{
			name:    "negative gv weight",
			modify:  func(p *Params) { p.GVWeightLF0 = -1 },
			wantErr: true,
			errMsg:  "gv_weight_lf0",
		},
		{
			name:   "zero gv weight disables gv",
			modify: func(p *Params) { p.GVWeightMGC = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)

			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Error %q should mention %q", err, tt.errMsg)
			}
		})
	}
}

// TestParamsFromOptions tests the loosely typed options object.
func TestParamsFromOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  map[string]any
		check func(t *testing.T, p Params)
	}{
		{
			name: "nil keeps defaults",
			opts: nil,
			check: func(t *testing.T, p Params) {
				if p != DefaultParams() {
					t.Errorf("Expected defaults, got %+v", p)
				}
			},
		},
		{
			name: "integral float accepted as int",
			opts: map[string]any{"sampling_rate": float64(22050)},
			check: func(t *testing.T, p Params) {
				if p.SamplingRate != 22050 {
					t.Errorf("Expected 22050, got %d", p.SamplingRate)
				}
			},
		},
		{
			name: "fractional float rejected for int",
			opts: map[string]any{"sampling_rate": 22050.5},
			check: func(t *testing.T, p Params) {
				if p.SamplingRate != 48000 {
					t.Errorf("Expected default 48000, got %d", p.SamplingRate)
				}
			},
		},
		{
			name: "string ignored",
			opts: map[string]any{"alpha": "0.3", "stage": "2"},
			check: func(t *testing.T, p Params) {
				if p.Alpha != 0.5 || p.Stage != 0 {
					t.Errorf("Wrong types should be ignored, got alpha %v stage %d", p.Alpha, p.Stage)
				}
			},
		},
		{
			name: "int accepted as float",
			opts: map[string]any{"beta": 0, "gv_weight_lpf": int64(2)},
			check: func(t *testing.T, p Params) {
				if p.Beta != 0 || p.GVWeightLPF != 2 {
					t.Errorf("Got beta %v gv_weight_lpf %v", p.Beta, p.GVWeightLPF)
				}
			},
		},
		{
			name: "log gain flag",
			opts: map[string]any{"use_log_gain": true, "audio_buff_size": 1600},
			check: func(t *testing.T, p Params) {
				if !p.UseLogGain || p.AudioBufferSize != 1600 {
					t.Errorf("Got %+v", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ParamsFromOptions(tt.opts))
		})
	}
}

func TestEngineSettings(t *testing.T) {
	p := DefaultParams()
	p.GVWeightMGC, p.GVWeightLF0, p.GVWeightLPF = 1, 0.7, 0
	s := p.EngineSettings()

	if s.SamplingRate != p.SamplingRate || s.Alpha != p.Alpha || s.Beta != p.Beta {
		t.Errorf("Settings do not match params: %+v", s)
	}
	if s.GVWeights != [3]float64{1, 0.7, 0} {
		t.Errorf("Expected per-stream gv weights, got %v", s.GVWeights)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("JTALK_SAMPLING_RATE", "16000")
	t.Setenv("JTALK_ALPHA", "0.42")
	t.Setenv("JTALK_USE_LOG_GAIN", "true")

	p := DefaultParams()
	if err := ApplyEnv(&p); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if p.SamplingRate != 16000 || p.Alpha != 0.42 || !p.UseLogGain {
		t.Errorf("Environment not applied: %+v", p)
	}
	if p.Beta != 0.8 {
		t.Errorf("Unset variables should keep their value, beta = %v", p.Beta)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("JTALK_STAGE", "many")

	p := DefaultParams()
	if err := ApplyEnv(&p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadParamsFromViper(t *testing.T) {
	v := viper.New()
	v.Set("synthesis.sampling_rate", 16000)
	v.Set("synthesis.beta", 0.4)
	v.Set("synthesis.gv_weight_lf0", 0.5)

	p, err := LoadParamsFromViper(v)
	if err != nil {
		t.Fatalf("LoadParamsFromViper failed: %v", err)
	}
	if p.SamplingRate != 16000 || p.Beta != 0.4 || p.GVWeightLF0 != 0.5 {
		t.Errorf("Unexpected params %+v", p)
	}
	if p.Alpha != 0.5 {
		t.Errorf("Unset keys should keep defaults, alpha = %v", p.Alpha)
	}
}

func TestLoadParamsFromViperInvalid(t *testing.T) {
	v := viper.New()
	v.Set("synthesis.uv_threshold", 4)

	if _, err := LoadParamsFromViper(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
