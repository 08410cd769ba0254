package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Clip is a decoded waveform ready for a StreamPlayer.
type Clip struct {
	Format Format
	PCM    []byte // signed 16-bit little endian, interleaved
}

// Duration returns the playing time of the clip.
func (c Clip) Duration() time.Duration {
	bps := c.Format.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(float64(len(c.PCM)) / float64(bps) * float64(time.Second))
}

// DecodeFile reads a PCM WAV file and converts it to 16-bit samples.
func DecodeFile(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("unable to open waveform: %w", err)
	}
	defer func() { _ = f.Close() }()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Clip{}, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("unable to decode waveform: %w", err)
	}

	clip := Clip{
		Format: Format{SampleRate: int(d.SampleRate), Channels: int(d.NumChans)},
		PCM:    make([]byte, len(buf.Data)*BytesPerSample),
	}
	depth := int(d.BitDepth)
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint16(clip.PCM[i*BytesPerSample:], uint16(toInt16(v, depth)))
	}
	return clip, nil
}

func toInt16(v, depth int) int16 {
	switch depth {
	case 8:
		// 8-bit WAV samples are unsigned
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
}
