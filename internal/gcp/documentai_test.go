package gcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestProcessorName(t *testing.T) {
	name := processorName(DocumentAIConfig{ProjectID: "pitch-lens-ai", Location: "us", ProcessorID: "c592e7609eabbf3"})
	assert.Equal(t, "projects/pitch-lens-ai/locations/us/processors/c592e7609eabbf3", name)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(0))
	assert.Nil(t, newLimiter(-5))

	l := newLimiter(120)
	require.NotNil(t, l)
	assert.Equal(t, rate.Every(500*time.Millisecond), l.Limit())
	assert.Equal(t, 1, l.Burst())
}
