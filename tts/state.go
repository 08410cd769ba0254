package tts

import (
	"fmt"
	"slices"
	"sync"
)

// StateType represents the lifecycle state of the orchestrator resources.
type StateType int

const (
	// StateUninitialized indicates no stage handle exists yet.
	StateUninitialized StateType = iota
	// StateInitializing indicates stage handles are being created.
	StateInitializing
	// StateReady indicates talk, repeat and stop are accepted.
	StateReady
	// StateClosed indicates every handle has been released.
	StateClosed
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateMachine manages lifecycle transitions. It is safe for concurrent use.
type StateMachine struct {
	mu          sync.RWMutex
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
}

// NewStateMachine creates a new state machine with valid transitions.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateUninitialized,
		transitions: map[StateType][]StateType{
			StateUninitialized: {StateInitializing, StateClosed},
			// a failed initialization falls back so init can be retried
			StateInitializing: {StateReady, StateUninitialized},
			StateReady:        {StateClosed},
			StateClosed:       {},
		},
		onEnter: make(map[StateType]func()),
	}
}

// Transition attempts to transition to the specified state.
func (sm *StateMachine) Transition(to StateType) bool {
	sm.mu.Lock()
	if !slices.Contains(sm.transitions[sm.current], to) {
		sm.mu.Unlock()
		return false
	}
	sm.current = to
	enterFn := sm.onEnter[to]
	sm.mu.Unlock()

	if enterFn != nil {
		enterFn()
	}
	return true
}

// MustTransition is like Transition but reports the rejected move as an error.
func (sm *StateMachine) MustTransition(to StateType) error {
	from := sm.Current()
	if !sm.Transition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrStateTransition, from, to)
	}
	return nil
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = fn
}

// guard returns the error matching a state in which talk-like calls are refused.
func guard(s StateType) error {
	switch s {
	case StateReady:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrUninitialized
	}
}
