package paths

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestExpand(t *testing.T) {
	t.Setenv("JTALK_TEST_VOICES", "/srv/voices")
	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/usr/share/hts-voice", "/usr/share/hts-voice"},
		{"$JTALK_TEST_VOICES/mei", "/srv/voices/mei"},
		{"~/dic", filepath.Join(home, "dic")},
		{"~other/dic", "~other/dic"},
	}
	for _, tt := range tests {
		if got := Expand(tt.in); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
