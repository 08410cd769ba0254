package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPollInterval is how often a session checks whether the device has
// finished playing.
const DefaultPollInterval = 20 * time.Millisecond

// Outcome tells how a session ended.
type Outcome int

const (
	// Completed means the whole clip was played.
	Completed Outcome = iota
	// Stopped means Stop or the caller's context ended the session early.
	Stopped
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	if o == Stopped {
		return "stopped"
	}
	return "completed"
}

// Player runs at most one playback session at a time on a Context. PlayFile
// blocks its caller; Stop may be called from any goroutine.
type Player struct {
	ctx          Context
	pollInterval time.Duration
	logger       *log.Logger

	mu      sync.Mutex
	session *session
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithPollInterval sets the completion check interval.
func WithPollInterval(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPlayer creates a playback controller on ctx.
func NewPlayer(ctx Context, opts ...PlayerOption) *Player {
	p := &Player{
		ctx:          ctx,
		pollInterval: DefaultPollInterval,
		logger:       log.Default().WithPrefix("audio"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type session struct {
	stream   StreamPlayer
	stop     chan struct{}
	stopOnce sync.Once
}

func (s *session) cancel() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// PlayFile plays the WAV file at path and returns when it has finished, when
// Stop is called, or when ctx is done. The session is always released before
// returning.
func (p *Player) PlayFile(ctx context.Context, path string) (Outcome, error) {
	clip, err := DecodeFile(path)
	if err != nil {
		return Completed, err
	}
	return p.Play(ctx, clip)
}

// Play plays an already decoded clip. See PlayFile.
func (p *Player) Play(ctx context.Context, clip Clip) (Outcome, error) {
	if want := p.ctx.Format(); clip.Format != want {
		return Completed, fmt.Errorf("%w: clip %s, device %s", ErrFormatMismatch, clip.Format, want)
	}

	s, err := p.open(clip)
	if err != nil {
		return Completed, err
	}
	defer p.release(s)

	p.logger.Debug("Playback started", "duration", clip.Duration())
	s.stream.Play()

	outcome, err := p.wait(ctx, s)
	p.logger.Debug("Playback finished", "outcome", outcome)
	return outcome, err
}

func (p *Player) open(clip Clip) (*session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		return nil, ErrBusy
	}
	if !p.ctx.IsReady() {
		return nil, ErrNotReady
	}

	stream, err := p.ctx.NewPlayer(bytes.NewReader(clip.PCM))
	if err != nil {
		return nil, fmt.Errorf("failed to open playback session: %w", err)
	}

	p.session = &session{
		stream: stream,
		stop:   make(chan struct{}),
	}
	return p.session, nil
}

// wait blocks until the session ends. Stop and ctx wake it immediately; the
// natural end is detected by polling the device.
func (p *Player) wait(ctx context.Context, s *session) (Outcome, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			s.stream.Pause()
			return Stopped, nil
		case <-ctx.Done():
			s.stream.Pause()
			return Stopped, ctx.Err()
		case <-ticker.C:
			if !s.stream.IsPlaying() {
				return Completed, nil
			}
		}
	}
}

func (p *Player) release(s *session) {
	if err := s.stream.Close(); err != nil {
		p.logger.Warn("Failed to close playback session", "error", err)
	}

	p.mu.Lock()
	if p.session == s {
		p.session = nil
	}
	p.mu.Unlock()
}

// Stop ends the active session. Without one it does nothing.
func (p *Player) Stop() {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()

	if s != nil {
		s.cancel()
	}
}

// Active reports whether a session is open.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// Close releases the underlying device.
func (p *Player) Close() error {
	p.Stop()
	return p.ctx.Close()
}
