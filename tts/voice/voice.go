// Package voice resolves the on-disk layout of an HTS voice and of the
// morphological dictionary used by the front end.
package voice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxPathLength bounds every resolved path. Longer paths are rejected instead
// of being truncated.
const MaxPathLength = 4096

var (
	// ErrPathTooLong is returned when a resolved path exceeds MaxPathLength.
	ErrPathTooLong = errors.New("path too long")
	// ErrMissingFile is returned when a required file is absent.
	ErrMissingFile = errors.New("required file missing")
	// ErrNotDirectory is returned when a voice or dictionary dir is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Stream identifies a parameter stream of the acoustic model.
type Stream int

const (
	// StreamMGC is the spectrum stream.
	StreamMGC Stream = iota
	// StreamLF0 is the log F0 stream.
	StreamLF0
	// StreamLPF is the optional low-pass filter stream.
	StreamLPF
)

// String returns the file-name stem of the stream.
func (s Stream) String() string {
	switch s {
	case StreamMGC:
		return "mgc"
	case StreamLF0:
		return "lf0"
	case StreamLPF:
		return "lpf"
	default:
		return "unknown"
	}
}

// StreamFiles holds the model, tree, window and global variance files of one
// stream. Empty strings mean "not available".
type StreamFiles struct {
	PDF     string
	Tree    string
	Windows []string
	GVPDF   string
	GVTree  string
}

// HasGV reports whether a global variance model is available.
func (s StreamFiles) HasGV() bool { return s.GVPDF != "" }

// Assets is the full set of voice model files plus the dictionary directory.
type Assets struct {
	VoiceDir string
	DicDir   string

	DurationPDF  string
	DurationTree string
	Streams      [3]StreamFiles
	GVSwitch     string
}

// File describes a single resolved asset.
type File struct {
	Role     string
	Path     string
	Required bool
}

// windows per stream; the lpf stream only uses a static window.
var windowCount = [3]int{3, 3, 1}

// DictionaryFiles are the files a compiled MeCab dictionary must contain.
var DictionaryFiles = []string{"sys.dic", "unk.dic", "char.bin", "matrix.bin"}

// Resolve builds the fixed file-name layout below voiceDir. It does not touch
// the filesystem.
func Resolve(voiceDir, dicDir string) (Assets, error) {
	a := Assets{
		VoiceDir: filepath.Clean(voiceDir),
		DicDir:   filepath.Clean(dicDir),
	}
	join := func(name string) string { return filepath.Join(a.VoiceDir, name) }

	a.DurationPDF = join("dur.pdf")
	a.DurationTree = join("tree-dur.inf")
	for i := range a.Streams {
		stem := Stream(i).String()
		sf := StreamFiles{
			PDF:    join(stem + ".pdf"),
			Tree:   join("tree-" + stem + ".inf"),
			GVPDF:  join("gv-" + stem + ".pdf"),
			GVTree: join("tree-gv-" + stem + ".inf"),
		}
		for w := 1; w <= windowCount[i]; w++ {
			sf.Windows = append(sf.Windows, join(fmt.Sprintf("%s.win%d", stem, w)))
		}
		a.Streams[i] = sf
	}
	a.GVSwitch = join("gv-switch.inf")

	for _, f := range a.Files() {
		if len(f.Path) > MaxPathLength {
			return Assets{}, fmt.Errorf("%w: %s (%d bytes)", ErrPathTooLong, f.Role, len(f.Path))
		}
	}
	if len(a.DicDir) > MaxPathLength {
		return Assets{}, fmt.Errorf("%w: dictionary dir (%d bytes)", ErrPathTooLong, len(a.DicDir))
	}
	return a, nil
}

// Files lists every non-empty asset path with its role.
func (a Assets) Files() []File {
	var files []File
	add := func(role, path string, required bool) {
		if path != "" {
			files = append(files, File{Role: role, Path: path, Required: required})
		}
	}

	add("duration model", a.DurationPDF, true)
	add("duration tree", a.DurationTree, true)
	for i, sf := range a.Streams {
		stem := Stream(i).String()
		// the lpf stream is optional as a whole
		required := Stream(i) != StreamLPF
		add(stem+" model", sf.PDF, required)
		add(stem+" tree", sf.Tree, required)
		for w, win := range sf.Windows {
			add(fmt.Sprintf("%s window %d", stem, w+1), win, required)
		}
		add(stem+" gv model", sf.GVPDF, false)
		add(stem+" gv tree", sf.GVTree, false)
	}
	add("gv switch", a.GVSwitch, false)
	return files
}

// Prune checks the filesystem. Missing required files are reported as one
// error; missing optional files are dropped from the returned copy.
func (a Assets) Prune() (Assets, error) {
	if err := checkDir(a.VoiceDir); err != nil {
		return a, fmt.Errorf("voice dir: %w", err)
	}

	var missing []string
	for _, f := range a.Files() {
		if f.Required && !exists(f.Path) {
			missing = append(missing, filepath.Base(f.Path))
		}
	}
	if len(missing) > 0 {
		return a, fmt.Errorf("%w: %s", ErrMissingFile, strings.Join(missing, ", "))
	}

	out := a
	for i := range out.Streams {
		sf := a.Streams[i]
		sf.Windows = append([]string(nil), sf.Windows...)
		if Stream(i) == StreamLPF && !streamComplete(sf) {
			sf.PDF, sf.Tree, sf.Windows = "", "", nil
		}
		if !exists(sf.GVPDF) || sf.PDF == "" {
			sf.GVPDF, sf.GVTree = "", ""
		}
		if !exists(sf.GVTree) {
			sf.GVTree = ""
		}
		out.Streams[i] = sf
	}
	if !exists(out.GVSwitch) {
		out.GVSwitch = ""
	}
	return out, nil
}

// CheckDictionary verifies that dir holds a compiled dictionary.
func CheckDictionary(dir string) error {
	if err := checkDir(dir); err != nil {
		return fmt.Errorf("dictionary dir: %w", err)
	}
	var missing []string
	for _, name := range DictionaryFiles {
		if !exists(filepath.Join(dir, name)) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFile, strings.Join(missing, ", "))
	}
	return nil
}

func streamComplete(sf StreamFiles) bool {
	if !exists(sf.PDF) || !exists(sf.Tree) {
		return false
	}
	for _, w := range sf.Windows {
		if !exists(w) {
			return false
		}
	}
	return true
}

func checkDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return nil
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
