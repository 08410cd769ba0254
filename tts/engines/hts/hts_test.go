package hts

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dgnsrekt/jtalk/tts/engines"
	"github.com/dgnsrekt/jtalk/tts/voice"
)

// writerSeeker is an in-memory io.WriteSeeker.
type writerSeeker struct {
	buf bytes.Buffer
}

func (w *writerSeeker) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *writerSeeker) Seek(int64, int) (int64, error) {
	return int64(w.buf.Len()), nil
}

// fakeRunner records the command line and writes a WAV to the -ow path.
type fakeRunner struct {
	name   string
	args   []string
	labels string
	output func(path string) error
	err    error
}

func (r *fakeRunner) Run(_ context.Context, _ []byte, name string, args ...string) ([]byte, error) {
	r.name, r.args = name, args
	if len(args) > 0 {
		data, _ := os.ReadFile(args[len(args)-1])
		r.labels = string(data)
	}
	if r.err != nil {
		return nil, r.err
	}
	for i, a := range args {
		if a == "-ow" && r.output != nil {
			return nil, r.output(args[i+1])
		}
	}
	return nil, nil
}

func writeTone(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           make([]int, 80),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func touchAll(t *testing.T, extra ...string) voice.Assets {
	t.Helper()
	root := t.TempDir()
	a, err := voice.Resolve(filepath.Join(root, "voice"), filepath.Join(root, "dic"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(a.VoiceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range a.Files() {
		if err := os.WriteFile(f.Path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return a
}

func settings() engines.Settings {
	return engines.Settings{
		SamplingRate:    48000,
		AudioBufferSize: 48000,
		Alpha:           0.55,
		Beta:            0.8,
		UVThreshold:     0.5,
		GVWeights:       [3]float64{1, 0.7, 1},
	}
}

func loadedEngine(t *testing.T, r *fakeRunner, streams int) (*Engine, voice.Assets) {
	t.Helper()
	e, err := New("hts_engine -x extra", WithRunner(r), WithStreams(streams), WithTempDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Configure(settings()); err != nil {
		t.Fatal(err)
	}
	a := touchAll(t)
	if err := e.Load(a); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return e, a
}

func flagValues(args []string, flag string) []string {
	var out []string
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			out = append(out, args[i+1])
		}
	}
	return out
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestArgs(t *testing.T) {
	e, a := loadedEngine(t, &fakeRunner{}, 2)
	args := e.Args("in.lab", "out.wav", 240)

	tests := []struct {
		flag string
		want string
	}{
		{"-s", "48000"},
		{"-p", "240"},
		{"-a", "0.55"},
		{"-g", "0"},
		{"-b", "0.8"},
		{"-u", "0.5"},
		{"-jm", "1"},
		{"-jf", "0.7"},
		{"-td", a.DurationTree},
		{"-md", a.DurationPDF},
		{"-tm", a.Streams[voice.StreamMGC].Tree},
		{"-mf", a.Streams[voice.StreamLF0].PDF},
		{"-cm", a.Streams[voice.StreamMGC].GVPDF},
		{"-ef", a.Streams[voice.StreamLF0].GVTree},
		{"-k", a.GVSwitch},
		{"-ow", "out.wav"},
	}
	for _, tt := range tests {
		got := flagValues(args, tt.flag)
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("%s = %v, want %q", tt.flag, got, tt.want)
		}
	}

	if got := flagValues(args, "-dm"); len(got) != 3 {
		t.Errorf("Expected 3 mgc windows, got %v", got)
	}
	if hasFlag(args, "-z") {
		t.Error("The engine must not open its own audio output")
	}
	for _, flag := range []string{"-tl", "-ml", "-dl", "-jl", "-cl", "-el", "-l"} {
		if hasFlag(args, flag) {
			t.Errorf("Unexpected flag %s for a two stream voice", flag)
		}
	}
	if args[len(args)-1] != "in.lab" {
		t.Errorf("Label file must be last, got %q", args[len(args)-1])
	}
}

func TestArgsThreeStreams(t *testing.T) {
	e, a := loadedEngine(t, &fakeRunner{}, 3)
	args := e.Args("in.lab", "out.wav", 200)

	lpf := a.Streams[voice.StreamLPF]
	if got := flagValues(args, "-ml"); len(got) != 1 || got[0] != lpf.PDF {
		t.Errorf("-ml = %v", got)
	}
	if got := flagValues(args, "-dl"); len(got) != 1 {
		t.Errorf("Expected 1 lpf window, got %v", got)
	}
	if got := flagValues(args, "-cl"); len(got) != 1 || got[0] != lpf.GVPDF {
		t.Errorf("-cl = %v", got)
	}
	if got := flagValues(args, "-jl"); len(got) != 1 || got[0] != "1" {
		t.Errorf("-jl = %v", got)
	}
}

func TestArgsLogGain(t *testing.T) {
	e, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	s := settings()
	s.UseLogGain = true
	if err := e.Configure(s); err != nil {
		t.Fatal(err)
	}
	if !hasFlag(e.Args("in.lab", "out.wav", 240), "-l") {
		t.Error("Expected -l with log gain")
	}
	if got := e.Command(); len(got) != 1 || got[0] != DefaultCommand {
		t.Errorf("Unexpected default command %v", got)
	}
}

func TestSynthesize(t *testing.T) {
	r := &fakeRunner{output: writeTone}
	e, _ := loadedEngine(t, r, 2)

	var w writerSeeker
	labels := []string{"xx^xx-sil+a=m", "xx^sil-a+m=e", "a^m-e+sil=xx"}
	if err := e.Synthesize(context.Background(), labels, 240, &w); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if r.name != "hts_engine" || r.args[0] != "-x" || r.args[1] != "extra" {
		t.Errorf("Unexpected command %s %v", r.name, r.args[:2])
	}
	if r.labels != strings.Join(labels, "\n")+"\n" {
		t.Errorf("Label file = %q", r.labels)
	}
	if !bytes.HasPrefix(w.buf.Bytes(), []byte("RIFF")) {
		t.Error("Output is not a WAV file")
	}
}

func TestSynthesizeFailures(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		e, err := New("hts_engine", WithRunner(&fakeRunner{}))
		if err != nil {
			t.Fatal(err)
		}
		if err := e.Synthesize(context.Background(), []string{"a", "b", "c"}, 240, &writerSeeker{}); !errors.Is(err, errNotLoaded) {
			t.Errorf("Expected errNotLoaded, got %v", err)
		}
	})

	t.Run("process error", func(t *testing.T) {
		boom := errors.New("hts_engine failed: exit status 1")
		e, _ := loadedEngine(t, &fakeRunner{err: boom}, 2)
		if err := e.Synthesize(context.Background(), []string{"a", "b", "c"}, 240, &writerSeeker{}); !errors.Is(err, boom) {
			t.Errorf("Expected runner error, got %v", err)
		}
	})

	t.Run("no output", func(t *testing.T) {
		e, _ := loadedEngine(t, &fakeRunner{}, 2)
		if err := e.Synthesize(context.Background(), []string{"a", "b", "c"}, 240, &writerSeeker{}); !errors.Is(err, ErrInvalidOutput) {
			t.Errorf("Expected ErrInvalidOutput, got %v", err)
		}
	})

	t.Run("garbage output", func(t *testing.T) {
		r := &fakeRunner{output: func(path string) error {
			return os.WriteFile(path, []byte("not a wav file at all, sorry"), 0o600)
		}}
		e, _ := loadedEngine(t, r, 2)
		if err := e.Synthesize(context.Background(), []string{"a", "b", "c"}, 240, &writerSeeker{}); !errors.Is(err, ErrInvalidOutput) {
			t.Errorf("Expected ErrInvalidOutput, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	e, err := New("hts_engine", WithRunner(&fakeRunner{}))
	if err != nil {
		t.Fatal(err)
	}
	a := touchAll(t)
	if err := e.Load(a); !errors.Is(err, errNotConfigured) {
		t.Errorf("Expected errNotConfigured, got %v", err)
	}

	if err := e.Configure(engines.Settings{}); err == nil {
		t.Error("Expected error for zero sampling rate")
	}
	if err := e.Configure(settings()); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(a.DurationPDF); err != nil {
		t.Fatal(err)
	}
	if err := e.Load(a); err == nil {
		t.Error("Expected error for unreadable model")
	}

	e.Clear()
	e.Refresh()
	if e.Streams() != 2 {
		t.Errorf("Expected 2 streams, got %d", e.Streams())
	}
}
