// Package tts turns Japanese text into speech on the local audio device.
//
// An Orchestrator owns one set of synthesis stages and one playback
// controller. It accepts one utterance at a time: Talk and Repeat block until
// playback has finished or has been stopped, while Stop and Close may be
// called from other goroutines.
package tts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/dgnsrekt/jtalk/tts/audio"
	"github.com/dgnsrekt/jtalk/tts/voice"
)

// AudioFactory opens the playback device for the session format.
type AudioFactory func(format audio.Format, bufferSamples int) (audio.Context, error)

// Orchestrator coordinates the synthesis stages, the playback controller and
// the utterance memory.
type Orchestrator struct {
	res      *resources
	pipeline *pipeline
	player   *audio.Player
	memory   memory
	metrics  *instruments

	// callMu is held for the whole of Init, Talk, Repeat and Close.
	callMu sync.Mutex

	// closed is done once Close has been called. It ends playback started
	// by a call that was already synthesizing.
	closed    context.Context
	markClose context.CancelFunc

	logger        *log.Logger
	workDir       string
	audioFactory  AudioFactory
	pollInterval  time.Duration
	meterProvider metric.MeterProvider
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkDir sets the directory for waveform artifacts. Defaults to the
// system temp dir.
func WithWorkDir(dir string) Option {
	return func(o *Orchestrator) { o.workDir = dir }
}

// WithAudioFactory replaces the playback device factory.
func WithAudioFactory(f AudioFactory) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.audioFactory = f
		}
	}
}

// WithPollInterval sets how often playback completion is checked.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.pollInterval = d }
}

// WithMeterProvider sets the otel meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Orchestrator) { o.meterProvider = mp }
}

// DefaultAudioFactory opens the system device, falling back to a silent mock
// device in CI or when no device is available.
func DefaultAudioFactory(format audio.Format, bufferSamples int) (audio.Context, error) {
	return audio.NewContext(audio.ContextAuto, format, bufferSamples)
}

// NewOrchestrator creates an uninitialized orchestrator owning stages.
func NewOrchestrator(stages Stages, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:       log.Default().WithPrefix("jtalk"),
		audioFactory: DefaultAudioFactory,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.closed, o.markClose = context.WithCancel(context.Background())
	o.res = newResources(stages, o.logger)
	o.pipeline = &pipeline{res: o.res, logger: o.logger}
	o.metrics = newInstruments(o.meterProvider, o.logger)
	return o
}

// Init brings the orchestrator to Ready. The voice and dictionary are opened
// by the first utterance. A failed Init leaves the orchestrator uninitialized
// and may be retried.
func (o *Orchestrator) Init(assets voice.Assets, params Params) (err error) {
	o.callMu.Lock()
	defer o.callMu.Unlock()

	if err := o.res.initialize(assets, params); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			o.res.clearAll()
			o.res.state.Transition(StateUninitialized)
		}
	}()

	format := audio.Format{SampleRate: params.SamplingRate, Channels: 1}
	device, err := o.audioFactory(format, params.AudioBufferSize)
	if err != nil {
		return NewError(KindPlayback, fmt.Errorf("%w: %w", ErrPlayback, err), "audio", "open device")
	}
	o.player = audio.NewPlayer(device,
		audio.WithPollInterval(o.pollInterval),
		audio.WithLogger(o.logger.WithPrefix("audio")))

	if err := o.res.ready(); err != nil {
		_ = device.Close()
		return NewError(KindState, err, "lifecycle", "initialize")
	}
	o.logger.Debug("Orchestrator ready", "format", format)
	return nil
}

// Talk speaks text with the given frame period and blocks until playback
// ends. A pitchPeriod <= 0 selects DefaultPitchPeriod. Text without
// speakable content succeeds without producing audio.
func (o *Orchestrator) Talk(ctx context.Context, text string, pitchPeriod int) error {
	if pitchPeriod <= 0 {
		pitchPeriod = DefaultPitchPeriod
	}
	if err := o.begin("talk"); err != nil {
		return err
	}
	defer o.callMu.Unlock()

	u := Utterance{Text: text, PitchPeriod: pitchPeriod}
	o.memory.store(u)
	return o.speak(ctx, u, false)
}

// Repeat speaks the most recent utterance again, running the whole pipeline.
func (o *Orchestrator) Repeat(ctx context.Context) error {
	if err := o.begin("repeat"); err != nil {
		return err
	}
	defer o.callMu.Unlock()

	u, ok := o.memory.recall()
	if !ok {
		return NewError(KindState, ErrNothingToRepeat, "orchestrator", "repeat")
	}
	return o.speak(ctx, u, true)
}

// begin checks the state and takes the call lock. On success the caller must
// release callMu.
func (o *Orchestrator) begin(action string) error {
	if err := guard(o.res.state.Current()); err != nil {
		return NewError(KindState, err, "orchestrator", action)
	}
	if !o.callMu.TryLock() {
		o.metrics.Record(context.Background(), &Metrics{}, OutcomeRejected, nil)
		return NewError(KindState, ErrBusy, "orchestrator", action)
	}
	// Close may have won the lock.
	if err := guard(o.res.state.Current()); err != nil {
		o.callMu.Unlock()
		return NewError(KindState, err, "orchestrator", action)
	}
	return nil
}

func (o *Orchestrator) speak(ctx context.Context, u Utterance, repeat bool) error {
	m := o.metrics.StartSynthesis(u, repeat)
	o.logger.Info("Speaking", "text", u.Text, "pitch", u.PitchPeriod)

	if err := o.res.load(); err != nil {
		o.metrics.Record(ctx, m, OutcomeFailed, err)
		return err
	}

	art := newArtifact(o.workDir)
	defer func() {
		if err := art.remove(); err != nil {
			o.logger.Warn("Failed to remove waveform artifact", "path", art.path, "error", err)
		}
	}()

	result, err := o.pipeline.run(ctx, u.Text, u.PitchPeriod, art.create)
	if err == nil {
		err = art.finish()
	}
	m.EndSynthesis(result.labels, art.size)
	if err != nil {
		o.metrics.Record(ctx, m, OutcomeFailed, err)
		return err
	}
	if !result.synthesized {
		o.metrics.Record(ctx, m, OutcomeEmpty, nil)
		return nil
	}

	if o.closed.Err() != nil {
		o.metrics.Record(ctx, m, OutcomeStopped, nil)
		return nil
	}
	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopOnClose := context.AfterFunc(o.closed, cancel)
	defer stopOnClose()

	outcome, err := o.player.PlayFile(playCtx, art.path)
	if err != nil && ctx.Err() == nil && o.closed.Err() != nil && errors.Is(err, context.Canceled) {
		outcome, err = audio.Stopped, nil
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = NewError(KindPlayback, fmt.Errorf("%w: %w", ErrPlayback, err), "audio", "play")
		}
		o.metrics.Record(ctx, m, OutcomeFailed, err)
		return err
	}
	if outcome == audio.Stopped {
		o.metrics.Record(ctx, m, OutcomeStopped, nil)
		return nil
	}
	o.metrics.Record(ctx, m, OutcomeSpoken, nil)
	return nil
}

// Stop ends the current playback. Without an active playback it does
// nothing. It never interrupts synthesis.
func (o *Orchestrator) Stop() error {
	if err := guard(o.res.state.Current()); err != nil {
		return NewError(KindState, err, "orchestrator", "stop")
	}
	o.player.Stop()
	return nil
}

// Close stops playback, waits for an in-flight utterance and releases every
// resource. Calling Close more than once is safe.
func (o *Orchestrator) Close() error {
	o.markClose()
	if o.res.state.Current() == StateReady {
		o.player.Stop()
	}

	o.callMu.Lock()
	defer o.callMu.Unlock()

	if o.res.state.Current() == StateClosed {
		return nil
	}
	wasReady := o.res.state.Current() == StateReady
	if err := o.res.teardown(); err != nil {
		return err
	}
	if wasReady && o.player != nil {
		if err := o.player.Close(); err != nil {
			o.logger.Warn("Failed to close audio device", "error", err)
		}
	}
	return nil
}

// State returns the lifecycle state.
func (o *Orchestrator) State() StateType {
	return o.res.state.Current()
}

// LastUtterance returns the utterance Repeat would speak.
func (o *Orchestrator) LastUtterance() (Utterance, bool) {
	return o.memory.recall()
}

// Speaking reports whether a playback session is active.
func (o *Orchestrator) Speaking() bool {
	if o.res.state.Current() != StateReady {
		return false
	}
	return o.player.Active()
}
