package frontend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgnsrekt/jtalk/tts"
)

// Boundary phonemes.
const (
	silence = "sil"
	pause   = "pau"
)

// ErrUnsupportedGraph is returned when the label builder is handed a graph
// it did not come with.
var ErrUnsupportedGraph = errors.New("unsupported feature graph")

// phone is one phoneme with its accent phrase context.
type phone struct {
	name     string
	boundary bool
	// mora position relative to the accent nucleus, forward and backward
	relAccent, fwd, bwd int
	moras, accent       int
}

// LabelBuilder turns a Graph into context labels of the form
//
//	p1^p2-p3+p4=p5/A:a1+a2+a3/F:f1_f2
//
// where p3 is the current phoneme, A describes its mora within the accent
// phrase and F the phrase itself. It implements tts.LabelBuilder.
type LabelBuilder struct {
	last tts.LabelSequence
}

// NewLabelBuilder creates a label builder.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{}
}

// Build converts graph into a label sequence. The sequence always starts and
// ends with a silence label, so a graph without speakable content yields two
// labels.
func (b *LabelBuilder) Build(graph tts.FeatureGraph) (tts.LabelSequence, error) {
	g, ok := graph.(*Graph)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGraph, graph)
	}

	phones := []phone{{name: silence, boundary: true}}
	for _, p := range g.phrases() {
		if g.nodes[p.start].IsPause() {
			if !phones[len(phones)-1].boundary {
				phones = append(phones, phone{name: pause, boundary: true})
			}
			continue
		}
		phones = appendPhrase(phones, g, p)
	}
	if last := len(phones) - 1; phones[last].name == pause {
		phones = phones[:last]
	}
	phones = append(phones, phone{name: silence, boundary: true})

	labels := make(tts.LabelSequence, len(phones))
	for i := range phones {
		labels[i] = formatLabel(phones, i)
	}
	b.last = labels
	return labels, nil
}

func appendPhrase(phones []phone, g *Graph, p phrase) []phone {
	var moras []mora
	for _, n := range g.nodes[p.start:p.end] {
		moras = append(moras, parseMoras(n.Pron)...)
	}
	total := len(moras)
	accent := g.nodes[p.start].Accent

	for i, m := range moras {
		if m.vowel == "" {
			continue
		}
		pos := i + 1
		ctx := phone{
			relAccent: pos - accent,
			fwd:       pos,
			bwd:       total - pos + 1,
			moras:     total,
			accent:    accent,
		}
		if m.consonant != "" {
			c := ctx
			c.name = m.consonant
			phones = append(phones, c)
		}
		ctx.name = m.vowel
		if m.unvoiced {
			ctx.name = strings.ToUpper(m.vowel)
		}
		phones = append(phones, ctx)
	}
	return phones
}

func formatLabel(phones []phone, i int) string {
	name := func(j int) string {
		if j < 0 || j >= len(phones) {
			return "xx"
		}
		return phones[j].name
	}

	p := phones[i]
	a, f := "xx+xx+xx", "xx_xx"
	if !p.boundary {
		a = fmt.Sprintf("%d+%d+%d", p.relAccent, p.fwd, p.bwd)
		f = fmt.Sprintf("%d_%d", p.moras, p.accent)
	}
	return fmt.Sprintf("%s^%s-%s+%s=%s/A:%s/F:%s", name(i-2), name(i-1), p.name, name(i+1), name(i+2), a, f)
}

// Phoneme returns the current phoneme of a label built by LabelBuilder.
func Phoneme(label string) string {
	_, rest, ok := strings.Cut(label, "-")
	if !ok {
		return label
	}
	cur, _, _ := strings.Cut(rest, "+")
	return cur
}

// Refresh drops the last label sequence.
func (b *LabelBuilder) Refresh() {
	b.last = nil
}

// Clear drops the last label sequence.
func (b *LabelBuilder) Clear() {
	b.last = nil
}
