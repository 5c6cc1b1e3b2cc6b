package gcp

import (
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
)

func TestStatusUpdates(t *testing.T) {
	updates := statusUpdates("error", map[string]any{
		"error_message": "boom",
		"errorKind":     "split",
	})

	assert.Equal(t, []firestore.Update{
		{Path: "status", Value: "error"},
		{Path: "errorKind", Value: "split"},
		{Path: "error_message", Value: "boom"},
	}, updates)
}

func TestStatusUpdatesWithoutPayload(t *testing.T) {
	assert.Equal(t, []firestore.Update{{Path: "status", Value: "queued"}}, statusUpdates("queued", nil))
}
