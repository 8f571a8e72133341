package rag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/vector"
)

func TestNewProviderConfigQdrant(t *testing.T) {
	cfg := NewProviderConfig(config.VectorStoreParam{
		Type: "qdrant", Host: "localhost", Port: 6334, APIKey: "key",
	})

	require.Equal(t, vector.ProviderQdrant, cfg.Type)
	require.NotNil(t, cfg.Qdrant)
	require.Equal(t, "localhost", cfg.Qdrant.Host)
	require.Equal(t, 6334, cfg.Qdrant.Port)
	require.Equal(t, "key", cfg.Qdrant.APIKey)
	require.Nil(t, cfg.Pinecone)
	require.Nil(t, cfg.Chromem)
}

func TestNewProviderConfigPinecone(t *testing.T) {
	cfg := NewProviderConfig(config.VectorStoreParam{
		Type: "pinecone", Host: "host", APIKey: "key", Collection: "docs",
	})

	require.Equal(t, vector.ProviderPinecone, cfg.Type)
	require.NotNil(t, cfg.Pinecone)
	require.Equal(t, "docs", cfg.Pinecone.IndexName)
	require.Equal(t, "host", cfg.Pinecone.Host)
	require.Nil(t, cfg.Qdrant)
}

func TestNewProviderConfigDefaultsToChromem(t *testing.T) {
	cfg := NewProviderConfig(config.VectorStoreParam{Type: "chromem"})

	require.Equal(t, vector.ProviderChromem, cfg.Type)
	require.NotNil(t, cfg.Chromem)

	cfg = NewProviderConfig(config.VectorStoreParam{})
	require.NotNil(t, cfg.Chromem)
}
