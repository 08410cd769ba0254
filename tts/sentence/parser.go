// Package sentence splits Japanese text into utterances short enough for a
// single synthesis call.
package sentence

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Parser cuts text into sentences.
type Parser struct {
	// end of a sentence, including closing brackets and quotes
	sentenceEndRegex *regexp.Regexp
	// clause boundary used to shorten long sentences
	clauseEndRegex *regexp.Regexp

	maxBytes int
}

// NewParser creates a parser whose sentences never exceed maxBytes once
// widened to full width. maxBytes <= 0 disables the limit.
func NewParser(maxBytes int) *Parser {
	return &Parser{
		sentenceEndRegex: regexp.MustCompile(`[。．！？!?]+[」』）)"']*`),
		clauseEndRegex:   regexp.MustCompile(`[、，,；;：:]+`),
		maxBytes:         maxBytes,
	}
}

// Parse returns the sentences of text in order. Lines are always sentence
// boundaries. Pieces without letters or digits are dropped.
func (p *Parser) Parse(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		for _, s := range splitAfter(p.sentenceEndRegex, line) {
			for _, piece := range p.shorten(s) {
				if speakable(piece) {
					sentences = append(sentences, piece)
				}
			}
		}
	}
	return sentences
}

// shorten splits s at clause boundaries, and failing that at rune
// boundaries, until every piece fits.
func (p *Parser) shorten(s string) []string {
	if p.fits(s) {
		return []string{s}
	}

	var out []string
	var cur string
	for _, clause := range splitAfter(p.clauseEndRegex, s) {
		if p.fits(cur + clause) {
			cur += clause
			continue
		}
		if cur != "" {
			out = append(out, cur)
		}
		cur = ""
		if p.fits(clause) {
			cur = clause
			continue
		}
		out = append(out, p.cut(clause)...)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// cut splits s into the longest pieces that fit.
func (p *Parser) cut(s string) []string {
	var out []string
	start := 0
	for i := range s {
		if i > start && !p.fits(s[start:i+runeLen(s[i:])]) {
			out = append(out, s[start:i])
			start = i
		}
	}
	return append(out, s[start:])
}

func (p *Parser) fits(s string) bool {
	return p.maxBytes <= 0 || len(width.Widen.String(s)) <= p.maxBytes
}

// splitAfter cuts s after every match of re and trims the pieces.
func splitAfter(re *regexp.Regexp, s string) []string {
	var out []string
	start := 0
	for _, m := range re.FindAllStringIndex(s, -1) {
		out = appendTrimmed(out, s[start:m[1]])
		start = m[1]
	}
	return appendTrimmed(out, s[start:])
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

func speakable(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	_, n := utf8.DecodeRuneInString(s)
	return n
}
