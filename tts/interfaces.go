package tts

import (
	"context"

	"github.com/dgnsrekt/jtalk/tts/engines"
)

// FeatureTable is the output of morphological analysis: one row per word in
// the form "surface,pos,pos1,pos2,pos3,ctype,cform,orig,read,pron,acc/mora,chain_rule,chain_flag".
type FeatureTable []string

// LabelSequence is the ordered list of context labels fed to the engine. The
// first and last labels are silence boundaries.
type LabelSequence []string

// Resettable is implemented by every stage that keeps per-utterance state.
type Resettable interface {
	// Refresh drops per-utterance state so the stage can be reused.
	Refresh()

	// Clear releases everything the stage holds. It must tolerate being
	// called on a stage that never finished loading.
	Clear()
}

// Normalizer prepares raw text for analysis.
type Normalizer interface {
	// Normalize returns analysis-ready text or an error for input that cannot
	// be represented without truncation.
	Normalize(text string) (string, error)
}

// Analyzer performs morphological analysis.
type Analyzer interface {
	Resettable

	// Load opens the dictionary in dicDir.
	Load(dicDir string) error

	// Analyze splits text into words with their features.
	Analyze(ctx context.Context, text string) (FeatureTable, error)
}

// FeatureGraph holds the per-word linguistic graph and its enrichment passes.
// The passes mutate the graph in place and must run in declaration order.
type FeatureGraph interface {
	Resettable

	// Build replaces the graph content with nodes made from features.
	Build(features FeatureTable) error

	SetPronunciation()
	SetDigit()
	SetAccentPhrase()
	SetAccentType()
	SetUnvoicedVowel()
	SetLongVowel()
}

// LabelBuilder converts an enriched graph into context labels.
type LabelBuilder interface {
	Resettable

	// Build returns the label sequence for graph.
	Build(graph FeatureGraph) (LabelSequence, error)
}

// Stages bundles the stage handles owned by one orchestrator.
type Stages struct {
	Normalizer Normalizer
	Analyzer   Analyzer
	Graph      FeatureGraph
	Labels     LabelBuilder
	Engine     engines.Engine
}

func (s Stages) validate() error {
	switch {
	case s.Normalizer == nil:
		return NewError(KindConfig, ErrInvalidConfig, "stages", "missing normalizer")
	case s.Analyzer == nil:
		return NewError(KindConfig, ErrInvalidConfig, "stages", "missing analyzer")
	case s.Graph == nil:
		return NewError(KindConfig, ErrInvalidConfig, "stages", "missing feature graph")
	case s.Labels == nil:
		return NewError(KindConfig, ErrInvalidConfig, "stages", "missing label builder")
	case s.Engine == nil:
		return NewError(KindConfig, ErrInvalidConfig, "stages", "missing engine")
	}
	return nil
}
