package tts

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadParamsFromViper loads the synthesis.* keys over the defaults.
func LoadParamsFromViper(v *viper.Viper) (Params, error) {
	if v == nil {
		v = viper.GetViper()
	}
	p := DefaultParams()

	if v.IsSet("synthesis.sampling_rate") {
		p.SamplingRate = v.GetInt("synthesis.sampling_rate")
	}
	if v.IsSet("synthesis.stage") {
		p.Stage = v.GetInt("synthesis.stage")
	}
	if v.IsSet("synthesis.audio_buff_size") {
		p.AudioBufferSize = v.GetInt("synthesis.audio_buff_size")
	}
	if v.IsSet("synthesis.alpha") {
		p.Alpha = v.GetFloat64("synthesis.alpha")
	}
	if v.IsSet("synthesis.beta") {
		p.Beta = v.GetFloat64("synthesis.beta")
	}
	if v.IsSet("synthesis.uv_threshold") {
		p.UVThreshold = v.GetFloat64("synthesis.uv_threshold")
	}
	if v.IsSet("synthesis.gv_weight_mgc") {
		p.GVWeightMGC = v.GetFloat64("synthesis.gv_weight_mgc")
	}
	if v.IsSet("synthesis.gv_weight_lf0") {
		p.GVWeightLF0 = v.GetFloat64("synthesis.gv_weight_lf0")
	}
	if v.IsSet("synthesis.gv_weight_lpf") {
		p.GVWeightLPF = v.GetFloat64("synthesis.gv_weight_lpf")
	}
	if v.IsSet("synthesis.use_log_gain") {
		p.UseLogGain = v.GetBool("synthesis.use_log_gain")
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid synthesis configuration: %w", err)
	}
	return p, nil
}
