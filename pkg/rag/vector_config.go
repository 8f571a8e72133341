package rag

import (
	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/vector"
)

// NewProviderConfig translates the task definition's flat vector-store
// parameters into the nested per-backend shape vector.NewProvider
// expects. Only the fields the selected backend needs are populated;
// the rest stay nil/zero, matching what that backend's own
// SetDefaults/Validate already tolerate.
func NewProviderConfig(p config.VectorStoreParam) *vector.ProviderConfig {
	cfg := &vector.ProviderConfig{Type: vector.ProviderType(p.Type)}

	switch cfg.Type {
	case vector.ProviderQdrant:
		cfg.Qdrant = &vector.QdrantConfig{
			Host:   p.Host,
			Port:   p.Port,
			APIKey: p.APIKey,
		}
	case vector.ProviderPinecone:
		cfg.Pinecone = &vector.PineconeConfig{
			APIKey:    p.APIKey,
			Host:      p.Host,
			IndexName: p.Collection,
		}
	default:
		cfg.Chromem = &vector.ChromemConfig{}
	}

	return cfg
}
