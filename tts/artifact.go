package tts

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// artifact is the WAV file produced for one utterance. Each call gets its
// own path so concurrent orchestrators never share a file.
type artifact struct {
	path string
	file *os.File
	size int64
}

func newArtifact(dir string) *artifact {
	if dir == "" {
		dir = os.TempDir()
	}
	return &artifact{path: filepath.Join(dir, "jtalk-"+uuid.NewString()+".wav")}
}

// create opens the artifact for writing. It is only called once synthesis is
// actually going to happen.
func (a *artifact) create() (io.WriteSeeker, error) {
	if a.file != nil {
		return nil, fmt.Errorf("%w: %s already open", ErrArtifactFailed, a.path)
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactFailed, err)
	}
	a.file = f
	return f, nil
}

// finish flushes the artifact to disk.
func (a *artifact) finish() error {
	if a.file == nil {
		return nil
	}
	f := a.file
	a.file = nil

	if st, err := f.Stat(); err == nil {
		a.size = st.Size()
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactFailed, err)
	}
	return nil
}

// remove deletes the artifact. A file that was never created is not an error.
func (a *artifact) remove() error {
	_ = a.finish()
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
