package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() map[string]any {
	return map[string]any{
		"message_id":  "m-001",
		"user_id":     "user_a",
		"campaign_id": "camp_x",
		"timestamp":   "2024-05-01T10:30:00Z",
		"intent":      "purchase_intent",
		"message":     "I really liked the spring discount offer",
	}
}

func TestDecodeRecord(t *testing.T) {
	record, err := DecodeRecord(validRaw())
	require.NoError(t, err)

	assert.Equal(t, "m-001", record.MessageID)
	assert.Equal(t, "user_a", record.UserID)
	assert.Equal(t, "camp_x", record.CampaignID)
	assert.Equal(t, "purchase_intent", record.Intent)
	assert.Empty(t, record.Embedding, "embedding is populated by the pipeline, not the decoder")

	ts, err := record.ParseTimestamp()
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())
}

func TestDecodeRecordNil(t *testing.T) {
	_, err := DecodeRecord(nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDecodeRecordMissingFields(t *testing.T) {
	for _, field := range []string{"message_id", "user_id", "campaign_id", "timestamp", "intent", "message"} {
		t.Run(field, func(t *testing.T) {
			raw := validRaw()
			delete(raw, field)

			_, err := DecodeRecord(raw)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.ErrorContains(t, err, field)
		})
	}
}

func TestDecodeRecordWrongTypes(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"numeric message id", "message_id", 42},
		{"empty user id", "user_id", ""},
		{"nil campaign id", "campaign_id", nil},
		{"boolean message", "message", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := validRaw()
			raw[tc.field] = tc.value

			_, err := DecodeRecord(raw)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestDecodeRecordBadTimestamp(t *testing.T) {
	raw := validRaw()
	raw["timestamp"] = "yesterday at noon"

	_, err := DecodeRecord(raw)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestDocumentExcludesEmbedding(t *testing.T) {
	record := &ConversationRecord{
		MessageID: "m-001",
		UserID:    "user_a",
		Message:   "hello",
		Embedding: []float32{0.1, 0.2, 0.3},
	}

	doc := record.Document()
	assert.Nil(t, doc.Embedding)
	assert.Equal(t, "m-001", doc.MessageID)
	// The original record keeps its embedding.
	assert.Len(t, record.Embedding, 3)
}
