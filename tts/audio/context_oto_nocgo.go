//go:build nocgo

package audio

import (
	"errors"
	"io"
	"time"
)

// OtoContext stub for builds without cgo.
type OtoContext struct{}

// NewOtoContext always fails without cgo.
func NewOtoContext(Format, time.Duration) (*OtoContext, error) {
	return nil, errors.New("audio not available in nocgo build")
}

func (c *OtoContext) NewPlayer(io.Reader) (StreamPlayer, error) { return nil, ErrNotReady }
func (c *OtoContext) Close() error                             { return nil }
func (c *OtoContext) IsReady() bool                            { return false }
func (c *OtoContext) Format() Format                           { return Format{} }
