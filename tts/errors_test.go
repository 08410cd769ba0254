package tts

import (
	"errors"
	"fmt"
	"testing"
)

// TestError tests the Error type formatting and unwrapping.
func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "component and action",
			err:  NewError(KindResource, ErrVoiceAsset, "voice", "load"),
			want: "voice: load: voice asset unavailable",
		},
		{
			name: "component only",
			err:  &Error{Err: ErrBusy, Component: "orchestrator"},
			want: "orchestrator: an utterance is already in progress",
		},
		{
			name: "bare",
			err:  &Error{Err: ErrClosed},
			want: "orchestrator has been closed",
		},
		{
			name: "nil cause",
			err:  &Error{},
			want: "unknown speech error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrapsBothCauses(t *testing.T) {
	cause := errors.New("mecab exited with status 1")
	err := NewError(KindResource, fmt.Errorf("%w: %w", ErrStageFailed, cause), "analyzer", "analyze")

	if !errors.Is(err, ErrStageFailed) {
		t.Error("Expected ErrStageFailed in chain")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected the cause in chain")
	}

	var e *Error
	if !errors.As(fmt.Errorf("talk: %w", err), &e) || e.Component != "analyzer" {
		t.Errorf("errors.As failed, got %+v", e)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"explicit kind wins", NewError(KindPlayback, ErrVoiceAsset, "x", "y"), KindPlayback},
		{"busy", ErrBusy, KindState},
		{"wrapped closed", fmt.Errorf("stop: %w", ErrClosed), KindState},
		{"nothing to repeat", ErrNothingToRepeat, KindState},
		{"dictionary", ErrDictionary, KindResource},
		{"input too long", ErrInputTooLong, KindResource},
		{"playback", ErrPlayback, KindPlayback},
		{"config", ErrInvalidConfig, KindConfig},
		{"foreign", errors.New("disk full"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{ErrBusy, true},
		{ErrVoiceAsset, true},
		{NewError(KindState, ErrUninitialized, "orchestrator", "talk"), true},
		{NewError(KindState, ErrClosed, "orchestrator", "talk"), false},
	}

	for _, tt := range tests {
		if got := IsRecoverable(tt.err); got != tt.want {
			t.Errorf("IsRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrorKindString(t *testing.T) {
	kinds := map[ErrorKind]string{
		KindInternal:  "internal",
		KindState:     "state",
		KindResource:  "resource",
		KindPlayback:  "playback",
		KindConfig:    "config",
		ErrorKind(42): "internal",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
