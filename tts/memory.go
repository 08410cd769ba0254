package tts

import "sync"

// Utterance is a text and the frame period it was spoken with.
type Utterance struct {
	Text        string
	PitchPeriod int
}

// memory holds the most recent utterance for Repeat.
type memory struct {
	mu   sync.Mutex
	last Utterance
	set  bool
}

func (m *memory) store(u Utterance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = u
	m.set = true
}

func (m *memory) recall() (Utterance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.set
}
