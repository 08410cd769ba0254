package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgnsrekt/jtalk/tts"
)

// featureFields is the number of comma separated fields of a feature row
// after the surface: part of speech with three sub groups, conjugation type
// and form, base form, reading, pronunciation, accent/mora, chain rule and
// chain flag.
const featureFields = 12

// Node is one word of the feature graph.
type Node struct {
	Surface   string
	POS       string
	POSGroup1 string
	POSGroup2 string
	POSGroup3 string
	CType     string
	CForm     string
	Orig      string
	Read      string
	Pron      string
	// Accent is the accent nucleus position; 0 means flat. After
	// SetAccentType the head node of a phrase holds the phrase accent.
	Accent    int
	MoraSize  int
	ChainRule string
	// ChainFlag is 1 when the node continues the previous accent phrase, 0
	// when it starts one and -1 while undecided.
	ChainFlag int
}

// IsPause reports whether the node is read as a pause.
func (n Node) IsPause() bool {
	return n.Pron == pauseMark
}

// Graph is the word-level feature graph. It implements tts.FeatureGraph.
// The enrichment passes mutate the nodes in place.
type Graph struct {
	nodes []Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Build replaces the graph with one node per feature row. Missing trailing
// fields are treated as unknown ("*").
func (g *Graph) Build(features tts.FeatureTable) error {
	g.nodes = g.nodes[:0]
	for i, row := range features {
		n, err := parseNode(row)
		if err != nil {
			return fmt.Errorf("feature row %d: %w", i, err)
		}
		g.nodes = append(g.nodes, n)
	}
	return nil
}

func parseNode(row string) (Node, error) {
	fields := strings.Split(row, ",")
	if fields[0] == "" {
		return Node{}, fmt.Errorf("empty surface in %q", row)
	}
	for len(fields) < featureFields+1 {
		fields = append(fields, "*")
	}

	n := Node{
		Surface:   fields[0],
		POS:       fields[1],
		POSGroup1: fields[2],
		POSGroup2: fields[3],
		POSGroup3: fields[4],
		CType:     fields[5],
		CForm:     fields[6],
		Orig:      fields[7],
		Read:      fields[8],
		Pron:      fields[9],
		ChainRule: fields[11],
		ChainFlag: -1,
	}
	if acc, moras, ok := strings.Cut(fields[10], "/"); ok {
		n.Accent, _ = strconv.Atoi(acc)
		n.MoraSize, _ = strconv.Atoi(moras)
	}
	if flag, err := strconv.Atoi(fields[12]); err == nil && (flag == 0 || flag == 1) {
		n.ChainFlag = flag
	}
	return n, nil
}

// Nodes returns the current nodes. The slice is owned by the graph.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Refresh drops the nodes of the last utterance.
func (g *Graph) Refresh() {
	g.nodes = g.nodes[:0]
}

// Clear releases the node storage.
func (g *Graph) Clear() {
	g.nodes = nil
}

// phrase is a half-open node range forming one accent phrase.
type phrase struct {
	start, end int
}

// phrases groups the nodes into accent phrases by their chain flags. Pauses
// form phrases of their own.
func (g *Graph) phrases() []phrase {
	var out []phrase
	for i := range g.nodes {
		if i == 0 || g.nodes[i].ChainFlag != 1 {
			out = append(out, phrase{start: i, end: i + 1})
			continue
		}
		out[len(out)-1].end = i + 1
	}
	return out
}

func (g *Graph) phraseMoras(p phrase) int {
	total := 0
	for _, n := range g.nodes[p.start:p.end] {
		total += n.MoraSize
	}
	return total
}
