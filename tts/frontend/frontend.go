// Package frontend implements the text side of the synthesis pipeline:
// normalization, morphological analysis with MeCab, the word feature graph
// with its enrichment passes, and context label generation.
package frontend

import (
	"github.com/dgnsrekt/jtalk/tts"
	"github.com/dgnsrekt/jtalk/tts/engines"
)

// NewStages assembles fresh front end stages around analyzer and engine.
func NewStages(analyzer tts.Analyzer, engine engines.Engine) tts.Stages {
	return tts.Stages{
		Normalizer: NewNormalizer(),
		Analyzer:   analyzer,
		Graph:      NewGraph(),
		Labels:     NewLabelBuilder(),
		Engine:     engine,
	}
}
