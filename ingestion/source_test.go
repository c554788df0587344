package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/campaignrec/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"message_id": "m1", "user_id": "a", "campaign_id": "x",
		 "timestamp": "2024-05-01T10:00:00Z", "intent": "ask", "message": "hi"},
		{"message_id": "m2"}
	]`), 0644))

	records, err := NewFileSource(path).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "m1", records[0]["message_id"])
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))

	_, err := source.Extract(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFileSourceMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"`), 0644))

	_, err := NewFileSource(path).Extract(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRunIsExclusive(t *testing.T) {
	stores := newTestStores()
	source := &sliceSource{records: []map[string]any{
		rawRecord("m1", "user_a", "camp_x", "some message"),
	}}

	started := make(chan struct{})
	release := make(chan struct{})
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		close(started)
		<-release
		return []float32{0.1}, nil
	}

	p := newTestPipeline(t, source, stores, embedder)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	<-started
	assert.ErrorIs(t, p.Run(context.Background()), ErrRunInProgress)
	close(release)
	require.NoError(t, <-done)
}
