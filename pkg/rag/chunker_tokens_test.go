package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenChunkerSplitsLongContent(t *testing.T) {
	chunker, err := NewTokenChunker(ChunkerConfig{Size: 10, Unit: "tokens"})
	require.NoError(t, err)

	content := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 20)
	chunks, err := chunker.Chunk(content, nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c.Content)
	}
	require.Equal(t, content, rebuilt.String())
}

func TestTokenChunkerKeepsShortContentWhole(t *testing.T) {
	chunker, err := NewTokenChunker(ChunkerConfig{Size: 1000, Unit: "tokens"})
	require.NoError(t, err)

	chunks, err := chunker.Chunk("short text", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "short text", chunks[0].Content)
}
