package frontend

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/dgnsrekt/jtalk/tts"
)

// MaxInputBytes is the longest normalized text accepted for one utterance.
const MaxInputBytes = 1024

// Normalizer converts raw text into the full-width form the dictionary is
// compiled for. It implements tts.Normalizer.
type Normalizer struct {
	maxBytes int
}

// NewNormalizer creates a normalizer with the MaxInputBytes limit.
func NewNormalizer() *Normalizer {
	return &Normalizer{maxBytes: MaxInputBytes}
}

// Normalize replaces control characters with spaces, trims the text and
// widens half-width characters. Text longer than the limit after widening is
// rejected rather than cut.
func (n *Normalizer) Normalize(text string) (string, error) {
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	text = width.Widen.String(strings.TrimSpace(text))

	if len(text) > n.maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", tts.ErrInputTooLong, len(text), n.maxBytes)
	}
	return text, nil
}
