// Package embedder declares the embedding-provider boundary the
// retrieval layer consumes (§6). The concrete embedding provider — HTTP
// framing, credentials, batching against a specific API — is an
// external collaborator, out of scope for the core; the core only
// depends on the Embedder interface below.
//
// Ported in shape from the teacher's pkg/embedder.Embedder, trimmed to
// the batch-only contract the spec actually names (embed(texts) ->
// vectors); per-text Embed and Dimension/Model/Close accessors the
// teacher exposed for its own provider lifecycle are dropped since this
// runtime never owns an embedder's connection, only calls it.
package embedder

import (
	"context"
	"math"
)

// Vector is an embedding, unit-normalized at insert time by callers so
// that similarity reduces to inner product (§4.7).
type Vector []float32

// Embedder produces vector embeddings for a batch of texts using a
// fixed, model-dependent dimension.
type Embedder interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx context.Context, texts []string, model string) ([]Vector, error)
}

// Normalize scales v to unit length in place and returns it. A zero
// vector is returned unchanged.
func Normalize(v Vector) Vector {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return v
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range v {
		v[i] /= norm
	}
	return v
}
