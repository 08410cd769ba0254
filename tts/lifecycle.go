package tts

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/jtalk/tts/voice"
)

// component is a named stage handle released on teardown.
type component struct {
	name  string
	stage Resettable
}

// resources owns the stage handles of one orchestrator and brings them
// through Uninitialized, Initializing, Ready and Closed.
type resources struct {
	stages Stages
	state  *StateMachine
	logger *log.Logger

	// components in creation order; released in reverse
	components []component

	mu     sync.Mutex
	params Params
	assets voice.Assets
	loaded bool

	closeOnce sync.Once
}

func newResources(stages Stages, logger *log.Logger) *resources {
	r := &resources{
		stages: stages,
		state:  NewStateMachine(),
		logger: logger,
	}
	for _, s := range []StateType{StateUninitialized, StateInitializing, StateReady, StateClosed} {
		r.state.OnEnter(s, func() { r.logger.Debug("Lifecycle state", "state", s) })
	}
	return r
}

// initialize validates the configuration and sets up engine numerics. On
// failure the state falls back to Uninitialized.
func (r *resources) initialize(assets voice.Assets, params Params) (err error) {
	switch r.state.Current() {
	case StateReady, StateInitializing:
		return NewError(KindState, ErrAlreadyInitialized, "lifecycle", "initialize")
	case StateClosed:
		return NewError(KindState, ErrClosed, "lifecycle", "initialize")
	}
	if err := r.state.MustTransition(StateInitializing); err != nil {
		return NewError(KindState, err, "lifecycle", "initialize")
	}
	defer func() {
		if err != nil {
			r.clearAll()
			r.state.Transition(StateUninitialized)
		}
	}()

	if err := r.stages.validate(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return NewError(KindConfig, err, "lifecycle", "initialize")
	}

	r.components = []component{
		{"analyzer", r.stages.Analyzer},
		{"feature graph", r.stages.Graph},
		{"label builder", r.stages.Labels},
		{"engine", r.stages.Engine},
	}
	if err := r.stages.Engine.Configure(params.EngineSettings()); err != nil {
		return NewError(KindConfig, fmt.Errorf("%w: %w", ErrInvalidConfig, err), "engine", "configure")
	}

	r.mu.Lock()
	r.params = params
	r.assets = assets
	r.loaded = false
	r.mu.Unlock()

	r.logger.Debug("Resources initialized",
		"voice", assets.VoiceDir,
		"dictionary", assets.DicDir,
		"sampling_rate", params.SamplingRate)
	return nil
}

// ready finishes initialization.
func (r *resources) ready() error {
	return r.state.MustTransition(StateReady)
}

// load opens the dictionary and the voice. It only does work until the first
// success; a failure leaves every stage cleared so the next call starts over.
func (r *resources) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}

	assets, err := r.assets.Prune()
	if err != nil {
		return NewError(KindResource, fmt.Errorf("%w: %w", ErrVoiceAsset, err), "voice", "load")
	}
	if err := voice.CheckDictionary(assets.DicDir); err != nil {
		return NewError(KindResource, fmt.Errorf("%w: %w", ErrDictionary, err), "dictionary", "load")
	}

	// The low-pass stream and its global variance are only loaded for
	// three-stream engines.
	if r.stages.Engine.Streams() < 3 {
		assets.Streams[voice.StreamLPF] = voice.StreamFiles{}
	}

	if err := r.stages.Analyzer.Load(assets.DicDir); err != nil {
		r.clearAll()
		return NewError(KindResource, fmt.Errorf("%w: %w", ErrDictionary, err), "analyzer", "load")
	}
	if err := r.stages.Engine.Load(assets); err != nil {
		r.clearAll()
		return NewError(KindResource, fmt.Errorf("%w: %w", ErrVoiceAsset, err), "engine", "load")
	}

	r.loaded = true
	r.logger.Info("Voice loaded", "voice", assets.VoiceDir, "streams", r.stages.Engine.Streams())
	return nil
}

// refresh resets the per-utterance state of every stage.
func (r *resources) refresh() {
	for i := len(r.components) - 1; i >= 0; i-- {
		r.components[i].stage.Refresh()
	}
}

// clearAll releases every stage handle in reverse creation order. Stages must
// tolerate Clear on a partially loaded handle.
func (r *resources) clearAll() {
	for i := len(r.components) - 1; i >= 0; i-- {
		c := r.components[i]
		r.logger.Debug("Releasing stage", "name", c.name)
		c.stage.Clear()
	}
}

// teardown releases everything exactly once. Later calls are no-ops.
func (r *resources) teardown() error {
	var err error
	r.closeOnce.Do(func() {
		from := r.state.Current()
		if !r.state.Transition(StateClosed) {
			err = NewError(KindState, fmt.Errorf("%w: %s -> %s", ErrStateTransition, from, StateClosed), "lifecycle", "teardown")
			return
		}
		if from == StateReady {
			r.mu.Lock()
			r.clearAll()
			r.loaded = false
			r.mu.Unlock()
		}
		r.logger.Debug("Resources released", "from", from)
	})
	return err
}

// isLoaded reports whether load has succeeded.
func (r *resources) isLoaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}
