package frontend

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgnsrekt/jtalk/tts"
)

func phonemes(labels tts.LabelSequence) string {
	var out []string
	for _, l := range labels {
		out = append(out, Phoneme(l))
	}
	return strings.Join(out, " ")
}

func buildLabels(t *testing.T, rows ...string) tts.LabelSequence {
	t.Helper()
	g := graphOf(t, rows...)
	enrich(g)
	labels, err := NewLabelBuilder().Build(g)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return labels
}

func TestLabelFormat(t *testing.T) {
	labels := buildLabels(t, rowAme)

	want := tts.LabelSequence{
		"xx^xx-sil+a=m/A:xx+xx+xx/F:xx_xx",
		"xx^sil-a+m=e/A:0+1+2/F:2_1",
		"sil^a-m+e=sil/A:1+2+1/F:2_1",
		"a^m-e+sil=xx/A:1+2+1/F:2_1",
		"m^e-sil+xx=xx/A:xx+xx+xx/F:xx_xx",
	}
	if len(labels) != len(want) {
		t.Fatalf("Expected %d labels, got %d: %v", len(want), len(labels), labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestLabelPhonemes(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want string
	}{
		{"pause between phrases", []string{rowAme, rowTouten, rowAme}, "sil a m e pau a m e sil"},
		{"edge pauses dropped", []string{rowTouten, rowAme, rowMaru}, "sil a m e sil"},
		{"repeated pauses collapse", []string{rowAme, rowTouten, rowMaru, rowAme}, "sil a m e pau a m e sil"},
		{"devoiced vowel", []string{rowAme, rowDesu, rowMaru}, "sil a m e d e s U sil"},
		{"long vowel and moraic nasal", []string{rowKyou, rowTenki}, "sil ky o o t e N k i sil"},
		{"geminate", []string{"切符,名詞,一般,*,*,*,*,切符,キップ,キップ,0/3,C2,-1"}, "sil k i cl p u sil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := phonemes(buildLabels(t, tt.rows...)); got != tt.want {
				t.Errorf("phonemes = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabelsWithoutContent(t *testing.T) {
	tests := [][]string{
		nil,
		{rowMaru},
		{rowUnknown},
		{rowTouten, rowMaru},
	}
	for _, rows := range tests {
		labels := buildLabels(t, rows...)
		if len(labels) != 2 {
			t.Errorf("rows %v: expected 2 labels, got %v", rows, labels)
		}
		if phonemes(labels) != "sil sil" {
			t.Errorf("rows %v: expected silence only, got %q", rows, phonemes(labels))
		}
	}
}

func TestLabelAccentContext(t *testing.T) {
	labels := buildLabels(t, rowKyou, rowWa)
	// kyo o wa: accent 1 over three moras
	if got := labels[len(labels)-2]; !strings.HasSuffix(got, "/A:2+3+1/F:3_1") {
		t.Errorf("Unexpected context of the last phoneme: %q", got)
	}
}

type foreignGraph struct{ *Graph }

func TestLabelBuilderRejectsForeignGraph(t *testing.T) {
	b := NewLabelBuilder()
	_, err := b.Build(foreignGraph{NewGraph()})
	if !errors.Is(err, ErrUnsupportedGraph) {
		t.Errorf("Expected ErrUnsupportedGraph, got %v", err)
	}
	b.Refresh()
	b.Clear()
}

func TestPhoneme(t *testing.T) {
	if got := Phoneme("sil^a-m+e=sil/A:-1+2+1/F:2_3"); got != "m" {
		t.Errorf("Phoneme() = %q", got)
	}
	if got := Phoneme("sil"); got != "sil" {
		t.Errorf("Phoneme() = %q", got)
	}
}
