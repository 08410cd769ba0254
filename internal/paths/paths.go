// Package paths expands user supplied file system paths.
package paths

import (
	"os"

	"github.com/mitchellh/go-homedir"
)

// Expand expands a leading tilde and all environment variables in path.
func Expand(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}
