// Package audio plays synthesized waveforms on the system audio device.
package audio

import (
	"errors"
	"fmt"
	"io"
)

// BytesPerSample is fixed: every context plays signed 16-bit little endian PCM.
const BytesPerSample = 2

var (
	// ErrNotReady is returned when a context has been closed or never came up.
	ErrNotReady = errors.New("audio context not ready")
	// ErrFormatMismatch is returned when a clip does not match the device format.
	ErrFormatMismatch = errors.New("audio format does not match the device")
	// ErrBusy is returned when a playback session is already active.
	ErrBusy = errors.New("a playback session is already active")
	// ErrInvalidWAV is returned for artifacts that are not PCM WAV files.
	ErrInvalidWAV = errors.New("not a valid PCM WAV file")
)

// Format describes interleaved PCM audio.
type Format struct {
	SampleRate int
	Channels   int
}

// BytesPerSecond returns the PCM data rate of f.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * BytesPerSample
}

// String returns a short human readable form.
func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// Context is a process-wide audio device. It is initialized before the first
// session and torn down after the last.
type Context interface {
	// NewPlayer creates a stream player reading PCM from r.
	NewPlayer(r io.Reader) (StreamPlayer, error)

	// Close releases the device.
	Close() error

	// IsReady returns whether the context is ready for use.
	IsReady() bool

	// Format returns the device format.
	Format() Format
}

// StreamPlayer plays one PCM stream.
type StreamPlayer interface {
	// Play starts or resumes playback.
	Play()

	// Pause pauses playback.
	Pause()

	// IsPlaying returns whether audio is currently audible.
	IsPlaying() bool

	// Close closes the player and releases resources.
	Close() error
}

// ContextType represents the type of audio context to create.
type ContextType int

const (
	// ContextProduction uses real audio hardware via oto.
	ContextProduction ContextType = iota
	// ContextMock uses a mock implementation for testing.
	ContextMock
	// ContextAuto picks production unless running in CI or the device fails.
	ContextAuto
)

// ParseContextType maps a configuration string to a ContextType.
func ParseContextType(s string) (ContextType, error) {
	switch s {
	case "", "auto":
		return ContextAuto, nil
	case "production", "device":
		return ContextProduction, nil
	case "mock":
		return ContextMock, nil
	default:
		return ContextAuto, fmt.Errorf("unknown audio mode %q", s)
	}
}
