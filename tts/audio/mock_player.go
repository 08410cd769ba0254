package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MockContext implements Context without touching audio hardware. Players
// report playing for the real duration of their data.
type MockContext struct {
	mu     sync.Mutex
	ready  bool
	format Format

	// Endless keeps new players playing until they are paused or closed.
	Endless bool
	// FailNewPlayer makes NewPlayer return this error.
	FailNewPlayer error

	// Test helpers
	PlayersCreated int
	PlayersClosed  int
}

// NewMockContext creates a new mock audio context.
func NewMockContext(format Format) *MockContext {
	return &MockContext{ready: true, format: format}
}

// NewPlayer creates a new mock stream player.
func (mc *MockContext) NewPlayer(r io.Reader) (StreamPlayer, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if !mc.ready {
		return nil, ErrNotReady
	}
	if mc.FailNewPlayer != nil {
		return nil, mc.FailNewPlayer
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	var duration time.Duration
	if bps := mc.format.BytesPerSecond(); bps > 0 {
		duration = time.Duration(float64(len(data)) / float64(bps) * float64(time.Second))
	}

	mc.PlayersCreated++
	log.Debug("Created mock audio player", "data_size", len(data), "players_created", mc.PlayersCreated)

	return &MockStreamPlayer{
		context:   mc,
		remaining: duration,
		endless:   mc.Endless,
	}, nil
}

// Close closes the mock audio context.
func (mc *MockContext) Close() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.ready = false
	return nil
}

// IsReady returns whether the context is ready.
func (mc *MockContext) IsReady() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.ready
}

// Format returns the configured format.
func (mc *MockContext) Format() Format {
	return mc.format
}

// Counts returns the number of players created and closed.
func (mc *MockContext) Counts() (created, closed int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.PlayersCreated, mc.PlayersClosed
}

// MockStreamPlayer implements StreamPlayer with a timer.
type MockStreamPlayer struct {
	context *MockContext

	mu        sync.Mutex
	playing   bool
	closed    bool
	endless   bool
	remaining time.Duration
	started   time.Time
	timer     *time.Timer

	PlayCount  int
	PauseCount int
}

// Play starts or resumes playback.
func (m *MockStreamPlayer) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playing || m.closed {
		return
	}
	m.PlayCount++
	m.playing = true
	m.started = time.Now()
	if !m.endless {
		m.timer = time.AfterFunc(m.remaining, m.finish)
	}
}

func (m *MockStreamPlayer) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.remaining = 0
}

// Pause pauses playback.
func (m *MockStreamPlayer) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.playing {
		return
	}
	m.PauseCount++
	m.playing = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if elapsed := time.Since(m.started); elapsed < m.remaining {
		m.remaining -= elapsed
	} else {
		m.remaining = 0
	}
}

// IsPlaying returns whether the player is playing.
func (m *MockStreamPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Close closes the player.
func (m *MockStreamPlayer) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.playing = false
	if m.timer != nil {
		m.timer.Stop()
	}
	m.mu.Unlock()

	m.context.mu.Lock()
	m.context.PlayersClosed++
	m.context.mu.Unlock()
	return nil
}
