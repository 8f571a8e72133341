// Store implements the spec's rag module contract (§4.2, §4.7): index a
// source (file path or raw text) under a document id, chunk and embed it,
// and answer top-k similarity queries against the result.
//
// This replaces the teacher's DocumentStore (file-watching, checkpointed,
// concurrent-worker ingestion pipeline) with the much smaller synchronous
// glue the spec actually asks for: one vector.Provider collection per
// task, one embedder.Embedder, brute-force top-k via the provider's own
// Search.
package rag

import (
	"context"
	"fmt"

	"github.com/taskforge/taskforge/pkg/embedder"
	"github.com/taskforge/taskforge/pkg/vector"
)

// defaultCollection is used when the task definition leaves
// parameters.rag.vector_store.collection empty.
const defaultCollection = "rag"

// Store is the rag module's indexing and retrieval surface.
type Store struct {
	provider   vector.Provider
	embedder   embedder.Embedder
	chunker    Chunker
	extractors *ExtractorRegistry
	model      string
	collection string
}

// NewStore builds a Store over an already-constructed vector provider
// and embedder. chunker selects the configured chunking strategy
// (§4.7); model names the embedding model passed to embedder.Embed.
// collection names the provider-side collection/index the task's
// documents are upserted into; an empty collection falls back to
// "rag".
func NewStore(provider vector.Provider, emb embedder.Embedder, chunker Chunker, model, collection string) *Store {
	if collection == "" {
		collection = defaultCollection
	}
	return &Store{
		provider:   provider,
		embedder:   emb,
		chunker:    chunker,
		extractors: NewExtractorRegistry(),
		model:      model,
		collection: collection,
	}
}

// Index extracts, chunks, embeds, and upserts doc's content. Each chunk
// is stored under "<documentID>#<chunk index>" so re-indexing the same
// document id overwrites rather than appends (collection-scoped ids are
// deterministic, not random).
func (s *Store) Index(ctx context.Context, doc Document) (int, error) {
	if doc.Content == "" && doc.SourcePath == "" {
		return 0, nil
	}
	extracted, err := s.extractors.Extract(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", doc.ID, err)
	}

	chunks, err := s.chunker.Chunk(extracted.Content, nil)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", doc.ID, err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts, s.model)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", doc.ID, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed %s: expected %d vectors, got %d", doc.ID, len(chunks), len(vectors))
	}

	for i, c := range chunks {
		v := embedder.Normalize(vectors[i])
		id := fmt.Sprintf("%s#%d", doc.ID, c.Index)
		metadata := map[string]any{
			"content":     c.Content,
			"document_id": doc.ID,
			"chunk_index": c.Index,
		}
		if err := s.provider.Upsert(ctx, s.collection, id, v, metadata); err != nil {
			return i, fmt.Errorf("upsert %s: %w", id, err)
		}
	}
	return len(chunks), nil
}

// Query embeds text and returns the top k matches by inner product
// (ties broken by the provider's own insertion-order traversal, per
// §4.7's "brute force is acceptable" retrieval model).
func (s *Store) Query(ctx context.Context, text string, k int) ([]vector.Result, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text}, s.model)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: no vector returned")
	}
	q := embedder.Normalize(vectors[0])
	return s.provider.Search(ctx, s.collection, q, k)
}
