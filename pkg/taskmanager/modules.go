package taskmanager

import (
	"fmt"
	"time"

	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/embedder"
	"github.com/taskforge/taskforge/pkg/module"
	"github.com/taskforge/taskforge/pkg/module/fsmodule"
	"github.com/taskforge/taskforge/pkg/module/memoriesmodule"
	"github.com/taskforge/taskforge/pkg/module/ragmodule"
	"github.com/taskforge/taskforge/pkg/module/shmodule"
	"github.com/taskforge/taskforge/pkg/rag"
	"github.com/taskforge/taskforge/pkg/vector"
)

// buildRegistry constructs the module registry declared by task.Modules.
// emb may be nil (no embedder configured); rag/memories degrade per their
// own documented fallbacks when it is.
func buildRegistry(task *config.Task, emb embedder.Embedder) (*module.Registry, error) {
	reg := module.NewRegistry()

	for _, entry := range task.Modules {
		mod, err := buildModule(entry, task, emb)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", entry.Name, err)
		}
		if err := reg.Register(mod); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func buildModule(entry config.ModuleEntry, task *config.Task, emb embedder.Embedder) (module.Module, error) {
	switch entry.Name {
	case fsmodule.Name:
		return fsmodule.New(configString(entry.Config, "working_dir", ".")), nil

	case shmodule.Name:
		allowed := configStringSlice(entry.Config, "allowed_commands")
		timeout := time.Duration(configInt(entry.Config, "timeout_seconds", 0)) * time.Second
		return shmodule.New(configString(entry.Config, "working_dir", "."), allowed, timeout), nil

	case ragmodule.Name:
		store, err := buildRAGStore(task, emb)
		if err != nil {
			return nil, err
		}
		return ragmodule.New(store), nil

	case memoriesmodule.Name:
		return memoriesmodule.New(emb, task.Parameters.Embedder.Model), nil

	default:
		return nil, fmt.Errorf("unknown built-in module %q", entry.Name)
	}
}

// buildRAGStore wires parameters.rag into a vector.Provider and rag.Store,
// translating the flat vector_store block via rag.NewProviderConfig and
// selecting the chunker from parameters.rag's chunk_size/overlap/unit.
func buildRAGStore(task *config.Task, emb embedder.Embedder) (*rag.Store, error) {
	provider, err := vector.NewProvider(rag.NewProviderConfig(task.Parameters.RAG.VectorStore))
	if err != nil {
		return nil, fmt.Errorf("vector provider: %w", err)
	}

	chunker, err := rag.NewChunker(rag.ChunkerConfig{
		Size:    task.Parameters.RAG.ChunkSize,
		Overlap: task.Parameters.RAG.ChunkOverlap,
		Unit:    task.Parameters.RAG.ChunkUnit,
		Model:   task.Parameters.Embedder.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	return rag.NewStore(provider, emb, chunker, task.Parameters.Embedder.Model, task.Parameters.RAG.VectorStore.Collection), nil
}

func configString(cfg map[string]any, key, fallback string) string {
	if v, ok := cfg[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func configInt(cfg map[string]any, key string, fallback int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func configStringSlice(cfg map[string]any, key string) []string {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
