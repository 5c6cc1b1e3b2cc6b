package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirestoreEventDecoding(t *testing.T) {
	raw := `{
		"oldValue": {"fields": {"status": {"stringValue": "uploaded"}}},
		"value": {
			"name": "projects/p/databases/(default)/documents/deals/abc",
			"fields": {
				"status": {"stringValue": "text_extracted"},
				"gcsPath": {"stringValue": "gs://decks/abc.pdf"},
				"pageCount": {"integerValue": "12"}
			}
		}
	}`

	var event FirestoreEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))

	assert.Equal(t, StatusTextExtracted, event.Value.String("status"))
	assert.Equal(t, "gs://decks/abc.pdf", event.Value.String("gcsPath"))
	assert.Equal(t, StatusUploaded, event.OldValue.String("status"))
	assert.Empty(t, event.Value.String("pageCount"), "non-string fields read as empty")
	assert.Empty(t, event.Value.String("full_text"))
}

func TestFirestoreEventWithoutOldValue(t *testing.T) {
	var event FirestoreEvent
	require.NoError(t, json.Unmarshal([]byte(`{"value": {"fields": {}}}`), &event))

	assert.Empty(t, event.OldValue.String("status"))
}
