package tts

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dgnsrekt/jtalk/tts"

// Utterance outcomes recorded in metrics.
const (
	OutcomeSpoken   = "spoken"
	OutcomeEmpty    = "empty"
	OutcomeStopped  = "stopped"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// instruments are the otel instruments of one orchestrator.
type instruments struct {
	utterances metric.Int64Counter
	duration   metric.Float64Histogram
	logger     *log.Logger
}

func newInstruments(mp metric.MeterProvider, logger *log.Logger) *instruments {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	in := &instruments{logger: logger}
	var err error
	in.utterances, err = meter.Int64Counter("jtalk.utterances",
		metric.WithDescription("Utterances handled, by outcome"))
	if err != nil {
		logger.Warn("Failed to create utterance counter", "error", err)
	}
	in.duration, err = meter.Float64Histogram("jtalk.synthesis.duration",
		metric.WithDescription("Time from text to waveform artifact"),
		metric.WithUnit("s"))
	if err != nil {
		logger.Warn("Failed to create synthesis histogram", "error", err)
	}
	return in
}

// Metrics holds the measurements of one utterance.
type Metrics struct {
	Text              string
	PitchPeriod       int
	Repeat            bool
	SynthesisStart    time.Time
	SynthesisDuration time.Duration
	Labels            int
	ArtifactBytes     int64
	Outcome           string
	Err               error
}

// StartSynthesis starts tracking an utterance.
func (in *instruments) StartSynthesis(u Utterance, repeat bool) *Metrics {
	m := &Metrics{
		Text:           u.Text,
		PitchPeriod:    u.PitchPeriod,
		Repeat:         repeat,
		SynthesisStart: time.Now(),
	}
	in.logger.Debug("Synthesis started", "textLength", len(u.Text), "pitch", u.PitchPeriod, "repeat", repeat)
	return m
}

// EndSynthesis marks the artifact as complete.
func (m *Metrics) EndSynthesis(labels int, artifactBytes int64) {
	m.SynthesisDuration = time.Since(m.SynthesisStart)
	m.Labels = labels
	m.ArtifactBytes = artifactBytes
}

// Record logs the utterance and updates the instruments.
func (in *instruments) Record(ctx context.Context, m *Metrics, outcome string, err error) {
	m.Outcome = outcome
	m.Err = err

	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("repeat", m.Repeat),
	)
	// metrics outlive a canceled call
	ctx = context.WithoutCancel(ctx)
	if in.utterances != nil {
		in.utterances.Add(ctx, 1, attrs)
	}
	if in.duration != nil && m.SynthesisDuration > 0 {
		in.duration.Record(ctx, m.SynthesisDuration.Seconds(), attrs)
	}

	switch {
	case err != nil:
		in.logger.Warn("Utterance failed", "outcome", outcome, "error", err)
	case outcome == OutcomeEmpty:
		in.logger.Debug("Utterance had no speakable content", "labels", m.Labels)
	default:
		in.logger.Debug("Utterance finished",
			"outcome", outcome,
			"labels", m.Labels,
			"artifact", humanize.Bytes(uint64(max(m.ArtifactBytes, 0))),
			"synthesis", m.SynthesisDuration.Round(time.Millisecond))
	}
}
