package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// minSpeakableLabels is the label count of an utterance with content. Two
// labels are just the leading and trailing silence.
const minSpeakableLabels = 3

// pipeline runs the stages in their fixed order for one utterance.
type pipeline struct {
	res    *resources
	logger *log.Logger
}

type pipelineResult struct {
	labels      int
	synthesized bool
}

// run synthesizes text into the writer returned by open. open is only called
// when the label sequence has content. Every stage is refreshed before run
// returns, whatever the outcome.
func (p *pipeline) run(ctx context.Context, text string, pitchPeriod int, open func() (io.WriteSeeker, error)) (pipelineResult, error) {
	var result pipelineResult
	stages := p.res.stages
	defer p.res.refresh()

	normalized, err := stages.Normalizer.Normalize(text)
	if err != nil {
		return result, stageError("normalizer", "normalize", err)
	}

	features, err := stages.Analyzer.Analyze(ctx, normalized)
	if err != nil {
		return result, stageError("analyzer", "analyze", err)
	}
	p.logger.Debug("Text analyzed", "words", len(features))

	if err := stages.Graph.Build(features); err != nil {
		return result, stageError("feature graph", "build", err)
	}
	stages.Graph.SetPronunciation()
	stages.Graph.SetDigit()
	stages.Graph.SetAccentPhrase()
	stages.Graph.SetAccentType()
	stages.Graph.SetUnvoicedVowel()
	stages.Graph.SetLongVowel()

	labels, err := stages.Labels.Build(stages.Graph)
	if err != nil {
		return result, stageError("label builder", "build", err)
	}
	result.labels = len(labels)

	if len(labels) < minSpeakableLabels {
		p.logger.Debug("Nothing to synthesize", "labels", len(labels))
		return result, nil
	}

	w, err := open()
	if err != nil {
		return result, NewError(KindResource, err, "artifact", "create")
	}
	if err := stages.Engine.Synthesize(ctx, labels, pitchPeriod, w); err != nil {
		return result, stageError("engine", "synthesize", err)
	}
	result.synthesized = true
	return result, nil
}

func stageError(component, action string, err error) error {
	return NewError(KindResource, fmt.Errorf("%w: %w", ErrStageFailed, err), component, action)
}
