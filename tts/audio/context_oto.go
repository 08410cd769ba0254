//go:build !nocgo

package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce   sync.Once
	otoCtx    *oto.Context
	otoFormat Format
	otoErr    error
)

// OtoContext implements Context on the system audio device.
type OtoContext struct {
	mu     sync.Mutex
	ctx    *oto.Context
	format Format
	ready  bool
}

// NewOtoContext returns a handle on the process-wide oto context, creating it
// on first use. Later calls must ask for the same format.
func NewOtoContext(format Format, buffer time.Duration) (*OtoContext, error) {
	otoOnce.Do(func() {
		otoFormat = format
		otoCtx, otoErr = newOto(format, buffer)
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoFormat != format {
		return nil, fmt.Errorf("%w: device opened as %s, requested %s", ErrFormatMismatch, otoFormat, format)
	}
	if err := otoCtx.Resume(); err != nil {
		return nil, fmt.Errorf("failed to resume audio context: %w", err)
	}
	return &OtoContext{ctx: otoCtx, format: format, ready: true}, nil
}

func newOto(format Format, buffer time.Duration) (*oto.Context, error) {
	options := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   buffer,
	}

	log.Debug("Initializing production audio context",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	ctx, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-readyChan:
		log.Debug("Production audio context initialized successfully")
		return ctx, nil
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("audio context initialization timeout")
	}
}

// NewPlayer creates a new stream player.
func (c *OtoContext) NewPlayer(r io.Reader) (StreamPlayer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil, ErrNotReady
	}
	return &otoPlayer{player: c.ctx.NewPlayer(r)}, nil
}

// Close suspends the device. oto v3 contexts cannot be destroyed.
func (c *OtoContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil
	}
	c.ready = false
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend audio context: %w", err)
	}
	return nil
}

// IsReady returns whether the context is ready.
func (c *OtoContext) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Format returns the device format.
func (c *OtoContext) Format() Format {
	return c.format
}

type otoPlayer struct {
	player *oto.Player
}

func (p *otoPlayer) Play()           { p.player.Play() }
func (p *otoPlayer) Pause()          { p.player.Pause() }
func (p *otoPlayer) IsPlaying() bool { return p.player.IsPlaying() }
func (p *otoPlayer) Close() error    { return p.player.Close() }
