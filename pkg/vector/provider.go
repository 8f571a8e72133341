// Package vector defines the pluggable vector-store backend contract
// (§4.7, §10) and the built-in backends that implement it.
//
// The Provider interface and Result type are reconstructed from the
// concrete backends' usage (chromem.go, qdrant.go, pinecone.go all
// implement this exact method set via a "var _ Provider = (*T)(nil)"
// assertion, and factory.go's NewProvider/Registry return this
// interface) rather than copied from any single file, since the
// retrieved package used this shape without ever declaring it.
package vector

import "context"

// Result is one match returned by Search or SearchWithFilter.
type Result struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
	Score    float32
}

// Provider is a vector-store backend: chromem-go embedded, Qdrant,
// Pinecone, or any other store that can upsert and search pre-computed
// embeddings scoped by collection.
type Provider interface {
	Name() string

	Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]any) error

	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)

	Delete(ctx context.Context, collection, id string) error
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error

	CreateCollection(ctx context.Context, collection string, vectorDimension int) error
	DeleteCollection(ctx context.Context, collection string) error

	Close() error
}

// NilProvider is a no-op backend, returned by NewProvider when no
// provider configuration is supplied.
type NilProvider struct{}

func (NilProvider) Name() string { return "nil" }

func (NilProvider) Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]any) error {
	return nil
}

func (NilProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error) {
	return nil, nil
}

func (NilProvider) SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error) {
	return nil, nil
}

func (NilProvider) Delete(ctx context.Context, collection, id string) error { return nil }

func (NilProvider) DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error {
	return nil
}

func (NilProvider) CreateCollection(ctx context.Context, collection string, vectorDimension int) error {
	return nil
}

func (NilProvider) DeleteCollection(ctx context.Context, collection string) error { return nil }

func (NilProvider) Close() error { return nil }

var _ Provider = NilProvider{}
