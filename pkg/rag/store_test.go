package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/embedder"
	"github.com/taskforge/taskforge/pkg/vector"
)

// fakeEmbedder returns a fixed-dimension one-hot-ish vector derived from
// text length, enough to exercise Index/Query without a real provider.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string, model string) ([]embedder.Vector, error) {
	out := make([]embedder.Vector, len(texts))
	for i, t := range texts {
		out[i] = embedder.Vector{float32(len(t)), 1}
	}
	return out, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)
	chunker, err := NewChunker(DefaultChunkerConfig())
	require.NoError(t, err)
	return NewStore(provider, fakeEmbedder{}, chunker, "test-model", "")
}

func TestIndexThenQueryReturnsMatch(t *testing.T) {
	store := newTestStore(t)
	n, err := store.Index(context.Background(), Document{
		ID:      "doc1",
		Content: "the quick brown fox jumps over the lazy dog",
	})
	require.NoError(t, err)
	require.Greater(t, n, 0)

	results, err := store.Query(context.Background(), "quick fox", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestIndexEmptyContentIndexesNothing(t *testing.T) {
	store := newTestStore(t)
	n, err := store.Index(context.Background(), Document{ID: "empty", Content: ""})
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
