package frontend

import "strings"

// maxGroupedDigits is the longest number read with units; longer numbers
// are read digit by digit.
const maxGroupedDigits = 16

var digitReadings = [10]string{"ゼロ", "イチ", "ニ", "サン", "ヨン", "ゴ", "ロク", "ナナ", "ハチ", "キュウ"}

// units of the four-digit groups, lowest first
var groupUnits = [4]string{"", "マン", "オク", "チョウ"}

// asciiDigits returns s with full-width digits folded to ASCII. ok is false
// if s holds anything but digits.
func asciiDigits(s string) (digits string, ok bool) {
	if s == "" {
		return "", false
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '０' && r <= '９':
			b.WriteRune(r - '０' + '0')
		default:
			return "", false
		}
	}
	return b.String(), true
}

func isDecimalPoint(s string) bool {
	return s == "." || s == "．"
}

// ReadNumber returns the katakana reading of a string of ASCII digits.
func ReadNumber(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return digitReadings[0]
	}
	if len(trimmed) > maxGroupedDigits {
		return ReadDigits(digits)
	}

	var groups []string
	for end := len(trimmed); end > 0; end -= 4 {
		groups = append(groups, trimmed[max(end-4, 0):end])
	}

	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		n := atoi(groups[i])
		if n == 0 {
			continue
		}
		r := readUnder10000(n)
		if groupUnits[i] == "チョウ" {
			r = geminate(r)
		}
		b.WriteString(r)
		b.WriteString(groupUnits[i])
	}
	return b.String()
}

// ReadDigits reads every digit on its own.
func ReadDigits(digits string) string {
	var b strings.Builder
	for _, r := range digits {
		if r >= '0' && r <= '9' {
			b.WriteString(digitReadings[r-'0'])
		}
	}
	return b.String()
}

func readUnder10000(n int) string {
	var b strings.Builder

	switch d := n / 1000; d {
	case 0:
	case 1:
		b.WriteString("セン")
	case 3:
		b.WriteString("サンゼン")
	case 8:
		b.WriteString("ハッセン")
	default:
		b.WriteString(digitReadings[d] + "セン")
	}

	switch d := n / 100 % 10; d {
	case 0:
	case 1:
		b.WriteString("ヒャク")
	case 3:
		b.WriteString("サンビャク")
	case 6:
		b.WriteString("ロッピャク")
	case 8:
		b.WriteString("ハッピャク")
	default:
		b.WriteString(digitReadings[d] + "ヒャク")
	}

	switch d := n / 10 % 10; d {
	case 0:
	case 1:
		b.WriteString("ジュウ")
	default:
		b.WriteString(digitReadings[d] + "ジュウ")
	}

	if d := n % 10; d > 0 {
		b.WriteString(digitReadings[d])
	}
	return b.String()
}

// geminate applies the sound change before チョウ: イチ, ハチ and ジュウ end
// in a glottal stop.
func geminate(r string) string {
	for _, suffix := range [][2]string{{"イチ", "イッ"}, {"ハチ", "ハッ"}, {"ジュウ", "ジュッ"}} {
		if before, ok := strings.CutSuffix(r, suffix[0]); ok {
			return before + suffix[1]
		}
	}
	return r
}

func atoi(digits string) int {
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return n
}
