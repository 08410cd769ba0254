package frontend

import "testing"

func TestReadNumber(t *testing.T) {
	tests := []struct {
		digits string
		want   string
	}{
		{"0", "ゼロ"},
		{"000", "ゼロ"},
		{"1", "イチ"},
		{"10", "ジュウ"},
		{"11", "ジュウイチ"},
		{"100", "ヒャク"},
		{"300", "サンビャク"},
		{"600", "ロッピャク"},
		{"800", "ハッピャク"},
		{"1000", "セン"},
		{"3000", "サンゼン"},
		{"8000", "ハッセン"},
		{"2024", "ニセンニジュウヨン"},
		{"10000", "イチマン"},
		{"12345", "イチマンニセンサンビャクヨンジュウゴ"},
		{"100000000", "イチオク"},
		{"100010000", "イチオクイチマン"},
		{"1000000000000", "イッチョウ"},
		{"8000000000000", "ハッチョウ"},
		{"10000000000000", "ジュッチョウ"},
		{"12345678901234567", "イチニサンヨンゴロクナナハチキュウゼロイチニサンヨンゴロクナナ"},
	}

	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			if got := ReadNumber(tt.digits); got != tt.want {
				t.Errorf("ReadNumber(%q) = %q, want %q", tt.digits, got, tt.want)
			}
		})
	}
}

func TestReadDigits(t *testing.T) {
	if got := ReadDigits("090"); got != "ゼロキュウゼロ" {
		t.Errorf("ReadDigits() = %q", got)
	}
}

func TestASCIIDigits(t *testing.T) {
	tests := []struct {
		s    string
		want string
		ok   bool
	}{
		{"１２３", "123", true},
		{"42", "42", true},
		{"1２", "12", true},
		{"12a", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := asciiDigits(tt.s)
		if got != tt.want || ok != tt.ok {
			t.Errorf("asciiDigits(%q) = %q, %v; want %q, %v", tt.s, got, ok, tt.want, tt.ok)
		}
	}
}
