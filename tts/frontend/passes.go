package frontend

import (
	"strconv"
	"strings"
)

// SetPronunciation fills in missing pronunciations. Kana surfaces are read
// as written, Latin letters are spelled out and punctuation becomes a pause.
// Words that cannot be pronounced are dropped, except digits which are left
// for SetDigit.
func (g *Graph) SetPronunciation() {
	out := g.nodes[:0]
	for _, n := range g.nodes {
		switch {
		case isPunctuation(n.Surface):
			n.POS = "記号"
			n.Read, n.Pron = pauseMark, pauseMark
			n.Accent, n.MoraSize = 0, 0
		case known(n.Pron):
			n.Pron = toKatakana(n.Pron)
		case isKana(n.Surface):
			n.Pron = toKatakana(n.Surface)
			n.Read = n.Pron
		default:
			if r, ok := spellLetters(n.Surface); ok {
				n.Read, n.Pron = r, r
				n.POS, n.POSGroup1 = "名詞", "固有名詞"
				n.Accent, n.MoraSize = 0, 0
				break
			}
			if _, ok := asciiDigits(n.Surface); !ok {
				continue
			}
		}
		if n.MoraSize == 0 && known(n.Pron) && !n.IsPause() {
			n.MoraSize = countMoras(n.Pron)
		}
		out = append(out, n)
	}
	g.nodes = out
}

// SetDigit merges runs of digits into numbers and reads them with units
// (man, oku, chou) and the usual sound changes. A decimal point between two
// runs is read as "ten" followed by the fraction digits.
func (g *Graph) SetDigit() {
	out := g.nodes[:0]
	for i := 0; i < len(g.nodes); {
		n := g.nodes[i]
		digits, ok := asciiDigits(n.Surface)
		if !ok {
			out = append(out, n)
			i++
			continue
		}

		surface := n.Surface
		j := i + 1
		for ; j < len(g.nodes); j++ {
			d, ok := asciiDigits(g.nodes[j].Surface)
			if !ok {
				break
			}
			digits += d
			surface += g.nodes[j].Surface
		}

		reading := ReadNumber(digits)
		if len(digits) > 1 && digits[0] == '0' {
			reading = ReadDigits(digits)
		}

		if j+1 < len(g.nodes) && isDecimalPoint(g.nodes[j].Surface) {
			var frac, fracSurface string
			k := j + 1
			for ; k < len(g.nodes); k++ {
				d, ok := asciiDigits(g.nodes[k].Surface)
				if !ok {
					break
				}
				frac += d
				fracSurface += g.nodes[k].Surface
			}
			if frac != "" {
				surface += g.nodes[j].Surface + fracSurface
				reading += "テン" + ReadDigits(frac)
				j = k
			}
		}

		n.Surface = surface
		n.POS, n.POSGroup1 = "名詞", "数"
		n.Read, n.Pron = reading, reading
		n.Accent = 0
		n.MoraSize = countMoras(reading)
		n.ChainRule = "*"
		out = append(out, n)
		i = j
	}
	g.nodes = out
}

// SetAccentPhrase decides for every node whether it continues the accent
// phrase of the node before it. Flags given by the dictionary are kept
// unless a pause is involved.
func (g *Graph) SetAccentPhrase() {
	for i := range g.nodes {
		n := &g.nodes[i]
		if i == 0 {
			n.ChainFlag = 0
			continue
		}
		prev := g.nodes[i-1]
		if n.ChainFlag != -1 && !n.IsPause() && !prev.IsPause() {
			continue
		}
		n.ChainFlag = 0
		if chains(prev, *n) {
			n.ChainFlag = 1
		}
	}
}

func chains(prev, cur Node) bool {
	switch {
	case prev.IsPause(), cur.IsPause():
		return false
	case prev.POS == "記号", cur.POS == "記号":
		return false
	case cur.POS == "助詞", cur.POS == "助動詞":
		return true
	case prev.POS == "接頭詞":
		return true
	case cur.POS == "名詞" && cur.POSGroup1 == "接尾":
		return true
	case cur.POS == "動詞" && (cur.POSGroup1 == "非自立" || cur.POSGroup1 == "接尾"):
		return true
	case cur.POS == "形容詞" && cur.POSGroup1 == "非自立":
		return true
	case cur.POS == "名詞" && prev.POS == "名詞":
		return true
	}
	return false
}

// SetAccentType computes the accent nucleus of every accent phrase from the
// accent of its head and the chain rules of the following words, and stores
// it on the head node.
func (g *Graph) SetAccentType() {
	for _, p := range g.phrases() {
		head := &g.nodes[p.start]
		if head.IsPause() {
			head.Accent = 0
			continue
		}

		acc, moras := head.Accent, head.MoraSize
		for k := p.start + 1; k < p.end; k++ {
			n := g.nodes[k]
			rule, param := chainRule(n.ChainRule, g.nodes[k-1].POS)
			switch n.POS {
			case "助詞", "助動詞":
				acc = attachFunctionWord(rule, param, acc, moras)
			case "名詞":
				acc = attachNoun(rule, n, acc, moras)
			}
			moras += n.MoraSize
		}
		head.Accent = min(max(acc, 0), moras)
	}
}

// attachFunctionWord applies an F rule. param is the nucleus offset into
// the attached word.
func attachFunctionWord(rule string, param, acc, moras int) int {
	switch rule {
	case "F2":
		if acc == 0 {
			return moras + param
		}
	case "F3":
		if acc != 0 {
			return moras + param
		}
	case "F4":
		return moras + param
	case "F5":
		return 0
	}
	return acc
}

// attachNoun applies a C rule for compound nouns.
func attachNoun(rule string, n Node, acc, moras int) int {
	switch rule {
	case "C1":
		return moras + n.Accent
	case "C2":
		return moras + 1
	case "C3":
		return moras
	case "C4":
		return 0
	case "C5":
		return acc
	}
	if n.Accent == 0 || n.MoraSize <= 2 {
		return moras + 1
	}
	return moras + n.Accent
}

// chainRule picks the rule matching the previous part of speech from a
// dictionary chain rule such as "動詞%F2@0/形容詞%F1" and splits off its
// parameter.
func chainRule(field, prevPOS string) (rule string, param int) {
	if !known(field) {
		return "", 0
	}
	chosen := ""
	for _, item := range strings.Split(field, "/") {
		pos, r, conditional := strings.Cut(item, "%")
		if !conditional {
			if chosen == "" {
				chosen = item
			}
			continue
		}
		if pos == prevPOS {
			chosen = r
			break
		}
	}
	rule, p, _ := strings.Cut(chosen, "@")
	param, _ = strconv.Atoi(p)
	return rule, param
}

// SetUnvoicedVowel marks i and u moras that lose their voicing: a voiceless
// consonant on both sides, never on the accent nucleus and never twice in a
// row. The final su of desu and masu before a pause is devoiced as well.
func (g *Graph) SetUnvoicedVowel() {
	type moraRef struct {
		node, index int
		pos, accent int
		pauseAfter  bool
	}

	moras := make([][]mora, len(g.nodes))
	var refs []moraRef
	for _, p := range g.phrases() {
		if g.nodes[p.start].IsPause() {
			if len(refs) > 0 {
				refs[len(refs)-1].pauseAfter = true
			}
			continue
		}
		accent, pos := g.nodes[p.start].Accent, 0
		for k := p.start; k < p.end; k++ {
			moras[k] = parseMoras(g.nodes[k].Pron)
			for j := range moras[k] {
				pos++
				refs = append(refs, moraRef{node: k, index: j, pos: pos, accent: accent})
			}
		}
	}
	if len(refs) == 0 {
		return
	}
	refs[len(refs)-1].pauseAfter = true

	changed := make([]bool, len(g.nodes))
	prevUnvoiced := false
	for i, r := range refs {
		m := &moras[r.node][r.index]
		if m.unvoiced {
			prevUnvoiced = true
			continue
		}

		devoice := false
		if (m.vowel == "i" || m.vowel == "u") && voicelessConsonants[m.consonant] &&
			r.pos != r.accent && !prevUnvoiced {
			if r.pauseAfter {
				n := g.nodes[r.node]
				devoice = m.text == "ス" && r.index == len(moras[r.node])-1 &&
					(n.Orig == "です" || n.Orig == "ます")
			} else {
				next := refs[i+1]
				devoice = voicelessConsonants[moras[next.node][next.index].consonant]
			}
		}
		if devoice {
			m.unvoiced = true
			m.text += unvoicedMark
			changed[r.node] = true
		}
		prevUnvoiced = devoice
	}

	for k, c := range changed {
		if c {
			g.nodes[k].Pron = joinMoras(moras[k])
		}
	}
}

// SetLongVowel turns u after o or u, and i after e, into a long vowel mark.
// The final mora of verbs and auxiliaries keeps its spelling.
func (g *Graph) SetLongVowel() {
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.IsPause() || !known(n.Pron) {
			continue
		}

		ms := parseMoras(n.Pron)
		changed := false
		for j := 1; j < len(ms); j++ {
			if ms[j].unvoiced || ms[j-1].unvoiced {
				continue
			}
			if j == len(ms)-1 && (n.POS == "動詞" || n.POS == "助動詞") {
				continue
			}
			prev := ms[j-1].vowel
			if (ms[j].text == "ウ" && (prev == "o" || prev == "u")) || (ms[j].text == "イ" && prev == "e") {
				ms[j] = mora{text: "ー", vowel: prev}
				changed = true
			}
		}
		if changed {
			n.Pron = joinMoras(ms)
		}
	}
}

// known reports whether a feature field holds a value.
func known(field string) bool {
	return field != "" && field != "*"
}
