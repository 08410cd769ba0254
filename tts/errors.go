package tts

import (
	"errors"
	"fmt"
)

// Common errors for the speech orchestrator.
var (
	// Lifecycle errors
	ErrUninitialized      = errors.New("orchestrator is not initialized")
	ErrAlreadyInitialized = errors.New("orchestrator is already initialized")
	ErrClosed             = errors.New("orchestrator has been closed")
	ErrStateTransition    = errors.New("invalid state transition")
	ErrBusy               = errors.New("an utterance is already in progress")

	// Utterance errors
	ErrNothingToRepeat = errors.New("no previous utterance to repeat")
	ErrInputTooLong    = errors.New("input text exceeds the maximum length")

	// Resource errors
	ErrVoiceAsset     = errors.New("voice asset unavailable")
	ErrDictionary     = errors.New("dictionary unavailable")
	ErrStageFailed    = errors.New("synthesis stage failed")
	ErrArtifactFailed = errors.New("waveform artifact could not be written")

	// Playback errors
	ErrPlayback = errors.New("audio playback failed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorKind classifies an error by how the caller should react to it.
type ErrorKind int

const (
	// KindInternal is used for errors without a more specific class.
	KindInternal ErrorKind = iota
	// KindState is returned when an operation is called in the wrong lifecycle state.
	KindState
	// KindResource covers missing voice files, dictionaries and failing stages.
	KindResource
	// KindPlayback covers device and session failures.
	KindPlayback
	// KindConfig covers invalid session parameters.
	KindConfig
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindResource:
		return "resource"
	case KindPlayback:
		return "playback"
	case KindConfig:
		return "config"
	default:
		return "internal"
	}
}

// Error provides detailed error information.
type Error struct {
	Err       error     // The underlying error
	Kind      ErrorKind // Error class
	Component string    // Component that generated the error
	Action    string    // Action being performed when error occurred
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return "unknown speech error"
	}
	if e.Component == "" {
		return e.Err.Error()
	}
	if e.Action == "" {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new error with context.
func NewError(kind ErrorKind, err error, component, action string) *Error {
	return &Error{
		Err:       err,
		Kind:      kind,
		Component: component,
		Action:    action,
	}
}

// KindOf reports the class of err. Sentinels that were not wrapped in an
// *Error are classified by identity.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, ErrUninitialized),
		errors.Is(err, ErrAlreadyInitialized),
		errors.Is(err, ErrClosed),
		errors.Is(err, ErrStateTransition),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrNothingToRepeat):
		return KindState
	case errors.Is(err, ErrVoiceAsset),
		errors.Is(err, ErrDictionary),
		errors.Is(err, ErrStageFailed),
		errors.Is(err, ErrArtifactFailed),
		errors.Is(err, ErrInputTooLong):
		return KindResource
	case errors.Is(err, ErrPlayback):
		return KindPlayback
	case errors.Is(err, ErrInvalidConfig):
		return KindConfig
	}
	return KindInternal
}

// IsRecoverable checks if the orchestrator can keep serving calls after err.
// Only a closed orchestrator is permanently unusable; failed initialization
// can be retried.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrClosed)
}
