package frontend

import (
	"strings"
	"unicode"
)

// unvoicedMark follows a mora whose vowel is devoiced.
const unvoicedMark = "’"

// pauseMark is the pronunciation of punctuation that becomes a pause.
const pauseMark = "、"

// phonemes of a single katakana: consonant and vowel.
var kanaPhonemes = map[rune][2]string{
	'ア': {"", "a"}, 'イ': {"", "i"}, 'ウ': {"", "u"}, 'エ': {"", "e"}, 'オ': {"", "o"},
	'カ': {"k", "a"}, 'キ': {"k", "i"}, 'ク': {"k", "u"}, 'ケ': {"k", "e"}, 'コ': {"k", "o"},
	'ガ': {"g", "a"}, 'ギ': {"g", "i"}, 'グ': {"g", "u"}, 'ゲ': {"g", "e"}, 'ゴ': {"g", "o"},
	'サ': {"s", "a"}, 'シ': {"sh", "i"}, 'ス': {"s", "u"}, 'セ': {"s", "e"}, 'ソ': {"s", "o"},
	'ザ': {"z", "a"}, 'ジ': {"j", "i"}, 'ズ': {"z", "u"}, 'ゼ': {"z", "e"}, 'ゾ': {"z", "o"},
	'タ': {"t", "a"}, 'チ': {"ch", "i"}, 'ツ': {"ts", "u"}, 'テ': {"t", "e"}, 'ト': {"t", "o"},
	'ダ': {"d", "a"}, 'ヂ': {"j", "i"}, 'ヅ': {"z", "u"}, 'デ': {"d", "e"}, 'ド': {"d", "o"},
	'ナ': {"n", "a"}, 'ニ': {"n", "i"}, 'ヌ': {"n", "u"}, 'ネ': {"n", "e"}, 'ノ': {"n", "o"},
	'ハ': {"h", "a"}, 'ヒ': {"h", "i"}, 'フ': {"f", "u"}, 'ヘ': {"h", "e"}, 'ホ': {"h", "o"},
	'バ': {"b", "a"}, 'ビ': {"b", "i"}, 'ブ': {"b", "u"}, 'ベ': {"b", "e"}, 'ボ': {"b", "o"},
	'パ': {"p", "a"}, 'ピ': {"p", "i"}, 'プ': {"p", "u"}, 'ペ': {"p", "e"}, 'ポ': {"p", "o"},
	'マ': {"m", "a"}, 'ミ': {"m", "i"}, 'ム': {"m", "u"}, 'メ': {"m", "e"}, 'モ': {"m", "o"},
	'ヤ': {"y", "a"}, 'ユ': {"y", "u"}, 'ヨ': {"y", "o"},
	'ラ': {"r", "a"}, 'リ': {"r", "i"}, 'ル': {"r", "u"}, 'レ': {"r", "e"}, 'ロ': {"r", "o"},
	'ワ': {"w", "a"}, 'ヰ': {"", "i"}, 'ヱ': {"", "e"}, 'ヲ': {"", "o"},
	'ヴ': {"v", "u"},
	'ン': {"", "N"}, 'ッ': {"", "cl"},
	'ァ': {"", "a"}, 'ィ': {"", "i"}, 'ゥ': {"", "u"}, 'ェ': {"", "e"}, 'ォ': {"", "o"},
	'ャ': {"y", "a"}, 'ュ': {"y", "u"}, 'ョ': {"y", "o"}, 'ヮ': {"w", "a"},
}

// small kana that merge into the preceding mora
var smallKana = map[rune]bool{
	'ァ': true, 'ィ': true, 'ゥ': true, 'ェ': true, 'ォ': true,
	'ャ': true, 'ュ': true, 'ョ': true, 'ヮ': true,
}

// Readings of the Latin alphabet.
var letterReadings = [26]string{
	"エー", "ビー", "シー", "ディー", "イー", "エフ", "ジー", "エイチ", "アイ",
	"ジェー", "ケー", "エル", "エム", "エヌ", "オー", "ピー", "キュー", "アール",
	"エス", "ティー", "ユー", "ブイ", "ダブリュー", "エックス", "ワイ", "ゼット",
}

var voicelessConsonants = map[string]bool{
	"k": true, "ky": true, "s": true, "sh": true, "t": true, "ch": true,
	"ts": true, "h": true, "hy": true, "f": true, "p": true, "py": true,
}

// mora is one rhythmic unit of a pronunciation.
type mora struct {
	text      string
	consonant string
	vowel     string
	unvoiced  bool
}

// parseMoras splits a katakana pronunciation into moras. A long vowel mark
// takes the vowel of the mora before it. Runes that are not katakana are
// skipped.
func parseMoras(pron string) []mora {
	var out []mora
	runes := []rune(pron)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case string(r) == unvoicedMark:
			if len(out) > 0 {
				out[len(out)-1].unvoiced = true
				out[len(out)-1].text += unvoicedMark
			}
			continue
		case r == 'ー':
			m := mora{text: "ー"}
			if len(out) > 0 {
				m.vowel = out[len(out)-1].vowel
			}
			out = append(out, m)
			continue
		}

		ph, ok := kanaPhonemes[r]
		if !ok {
			continue
		}
		m := mora{text: string(r), consonant: ph[0], vowel: ph[1]}
		if i+1 < len(runes) && smallKana[runes[i+1]] && !smallKana[r] {
			small := kanaPhonemes[runes[i+1]]
			m = combine(m, runes[i+1], small)
			i++
		}
		out = append(out, m)
	}
	return out
}

// combine merges a small kana into the mora before it.
func combine(m mora, small rune, ph [2]string) mora {
	m.text += string(small)
	switch small {
	case 'ャ', 'ュ', 'ョ':
		switch m.consonant {
		case "sh", "ch", "j":
		case "":
			m.consonant = "y"
		default:
			m.consonant += "y"
		}
	default:
		if m.consonant == "" {
			m.consonant = "w"
		}
	}
	m.vowel = ph[1]
	return m
}

func joinMoras(moras []mora) string {
	var b strings.Builder
	for _, m := range moras {
		b.WriteString(m.text)
	}
	return b.String()
}

// countMoras returns the number of moras in a katakana pronunciation.
func countMoras(pron string) int {
	return len(parseMoras(pron))
}

// toKatakana converts hiragana to katakana and leaves other runes alone.
func toKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + ('ァ' - 'ぁ')
		}
		return r
	}, s)
}

// isKana reports whether s consists of kana and long vowel marks only.
func isKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != 'ー' && !unicode.In(r, unicode.Hiragana, unicode.Katakana) {
			return false
		}
	}
	return true
}

// spellLetters reads a run of Latin letters one by one. ok is false if s
// holds anything else.
func spellLetters(s string) (reading string, ok bool) {
	if s == "" {
		return "", false
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'Ａ' && r <= 'Ｚ':
			r = r - 'Ａ' + 'A'
		case r >= 'ａ' && r <= 'ｚ':
			r = r - 'ａ' + 'A'
		case r >= 'a' && r <= 'z':
			r = r - 'a' + 'A'
		}
		if r < 'A' || r > 'Z' {
			return "", false
		}
		b.WriteString(letterReadings[r-'A'])
	}
	return b.String(), true
}

// isPunctuation reports whether s is sentence punctuation read as a pause.
func isPunctuation(s string) bool {
	switch s {
	case "、", "。", "，", "．", "！", "？", "!", "?", ",", ".", "…", "・", "：", "；", "「", "」", "（", "）":
		return true
	}
	return false
}
