package mock

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	ctx := context.Background()
	embedder := NewMockEmbedder()

	first, err := embedder.EmbedText(ctx, "loved the spring offer")
	require.NoError(t, err)
	second, err := embedder.EmbedText(ctx, "loved the spring offer")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same text always yields the same vector")
	assert.Len(t, first, 384)

	other, err := embedder.EmbedText(ctx, "completely different message")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestMockEmbedderDimensions(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.Dimensions = 16

	vector, err := embedder.EmbedText(context.Background(), "short vector")
	require.NoError(t, err)
	assert.Len(t, vector, 16)
}

func TestMockEmbedderInjectedBehavior(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 2, 3}, nil
	}

	vector, err := embedder.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vector)
	assert.Equal(t, 1, embedder.CallCount())

	embedder.Reset()
	assert.Zero(t, embedder.CallCount())
	assert.Nil(t, embedder.EmbedTextFunc)
}

// A single embedder instance is shared across the ingestion pool's workers,
// so concurrent calls must not race on the call counter.
func TestMockEmbedderConcurrentUse(t *testing.T) {
	embedder := NewMockEmbedder()

	const workers = 8
	const callsPerWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < callsPerWorker; i++ {
				vector, err := embedder.EmbedText(context.Background(), fmt.Sprintf("message %d-%d", w, i))
				assert.NoError(t, err)
				assert.Len(t, vector, 384)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*callsPerWorker, embedder.CallCount())
}
