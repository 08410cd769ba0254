package tts

import (
	"errors"
	"sync"
	"testing"
)

// TestStateTypeString tests the String() method for StateType.
func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state    StateType
		expected string
	}{
		{StateUninitialized, "uninitialized"},
		{StateInitializing, "initializing"},
		{StateReady, "ready"},
		{StateClosed, "closed"},
		{StateType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("StateType.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestStateMachineTransitions tests the allowed moves.
func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []StateType
		allowed bool
	}{
		{"init succeeds", []StateType{StateInitializing, StateReady}, true},
		{"init fails and retries", []StateType{StateInitializing, StateUninitialized, StateInitializing, StateReady}, true},
		{"close ready", []StateType{StateInitializing, StateReady, StateClosed}, true},
		{"close uninitialized", []StateType{StateClosed}, true},
		{"ready without init", []StateType{StateReady}, false},
		{"close while initializing", []StateType{StateInitializing, StateClosed}, false},
		{"reopen after close", []StateType{StateClosed, StateInitializing}, false},
		{"ready back to uninitialized", []StateType{StateInitializing, StateReady, StateUninitialized}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			ok := true
			for _, s := range tt.path {
				if !sm.Transition(s) {
					ok = false
					break
				}
			}
			if ok != tt.allowed {
				t.Errorf("Path %v allowed = %v, want %v", tt.path, ok, tt.allowed)
			}
		})
	}
}

func TestMustTransition(t *testing.T) {
	sm := NewStateMachine()

	err := sm.MustTransition(StateReady)
	if !errors.Is(err, ErrStateTransition) {
		t.Fatalf("Expected ErrStateTransition, got %v", err)
	}
	if sm.Current() != StateUninitialized {
		t.Errorf("Rejected transition must not change state, got %s", sm.Current())
	}
	if err := sm.MustTransition(StateInitializing); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestStateMachineOnEnter(t *testing.T) {
	sm := NewStateMachine()
	entered := 0
	sm.OnEnter(StateClosed, func() { entered++ })

	sm.Transition(StateClosed)
	sm.Transition(StateClosed)

	if entered != 1 {
		t.Errorf("Expected one callback, got %d", entered)
	}
}

func TestGuard(t *testing.T) {
	tests := []struct {
		state StateType
		want  error
	}{
		{StateUninitialized, ErrUninitialized},
		{StateInitializing, ErrUninitialized},
		{StateReady, nil},
		{StateClosed, ErrClosed},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := guard(tt.state); !errors.Is(got, tt.want) {
				t.Errorf("guard(%s) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

// TestStateMachineConcurrency tests that only one goroutine wins a transition.
func TestStateMachineConcurrency(t *testing.T) {
	sm := NewStateMachine()
	sm.Transition(StateInitializing)
	sm.Transition(StateReady)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sm.Transition(StateClosed) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			_ = sm.Current()
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Expected exactly one winner, got %d", wins)
	}
}
