package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// IsCI detects if we're running in a CI environment.
func IsCI() bool {
	ciVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"BUILDKITE",
	}

	for _, envVar := range ciVars {
		if val := os.Getenv(envVar); val != "" && val != "false" {
			log.Debug("CI environment detected", "variable", envVar)
			return true
		}
	}

	if os.Getenv("JTALK_MOCK_AUDIO") == "true" {
		log.Debug("Mock audio requested via environment variable")
		return true
	}
	return false
}

// NewContext creates an audio context of the given type. bufferSamples is the
// device buffer length in samples; zero selects the device default.
func NewContext(contextType ContextType, format Format, bufferSamples int) (Context, error) {
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("invalid audio format %s", format)
	}
	buffer := bufferDuration(format, bufferSamples)

	switch contextType {
	case ContextProduction:
		log.Debug("Creating production audio context", "format", format, "buffer", buffer)
		return NewOtoContext(format, buffer)

	case ContextMock:
		log.Debug("Creating mock audio context", "format", format)
		return NewMockContext(format), nil

	case ContextAuto:
		if IsCI() {
			log.Info("Using mock audio context", "reason", "CI environment")
			return NewMockContext(format), nil
		}
		ctx, err := NewOtoContext(format, buffer)
		if err != nil {
			log.Warn("Failed to create production audio context, falling back to mock", "error", err)
			return NewMockContext(format), nil
		}
		return ctx, nil

	default:
		return nil, fmt.Errorf("unknown audio context type: %v", contextType)
	}
}

func bufferDuration(format Format, samples int) time.Duration {
	if samples <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(format.SampleRate)
}
