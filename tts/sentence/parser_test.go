package sentence

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentences",
			input:    "今日は良い天気です。明日は雨でしょう！",
			expected: []string{"今日は良い天気です。", "明日は雨でしょう！"},
		},
		{
			name:     "closing brackets stay with the sentence",
			input:    "「はい。」と言った。",
			expected: []string{"「はい。」", "と言った。"},
		},
		{
			name:     "lines are boundaries",
			input:    "一行目\n\n二行目？ 三つ目",
			expected: []string{"一行目", "二行目？", "三つ目"},
		},
		{
			name:     "decimal point is not an end",
			input:    "3.14は円周率です。",
			expected: []string{"3.14は円周率です。"},
		},
		{
			name:     "punctuation only",
			input:    "。。。\n、",
			expected: nil,
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	p := NewParser(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input)
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int
		input    string
		expected []string
	}{
		{
			name:     "split at clauses",
			maxBytes: 30,
			input:    "あいうえお、かきくけこ、さしすせそ。",
			expected: []string{"あいうえお、", "かきくけこ、", "さしすせそ。"},
		},
		{
			name:     "clauses are joined while they fit",
			maxBytes: 40,
			input:    "あいうえお、かきくけこ、さしすせそ。",
			expected: []string{"あいうえお、かきくけこ、", "さしすせそ。"},
		},
		{
			name:     "hard cut without clauses",
			maxBytes: 9,
			input:    "あいうえお",
			expected: []string{"あいう", "えお"},
		},
		{
			name:     "limit applies to the widened text",
			maxBytes: 9,
			input:    "abcd",
			expected: []string{"abc", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewParser(tt.maxBytes).Parse(tt.input)
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
