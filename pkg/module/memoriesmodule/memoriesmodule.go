// Package memoriesmodule implements the memories built-in module
// (§4.2): insert(text) appends a free-form note; recall(query, k?)
// returns matching notes, via nearest-neighbor over an embedder when
// one is configured, else substring match. Distinct from the rag
// module: memories holds model-authored notes, not ingested documents,
// so it keeps its own small in-process store rather than sharing a
// vector.Provider collection.
package memoriesmodule

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/taskforge/taskforge/pkg/embedder"
	"github.com/taskforge/taskforge/pkg/module"
)

const Name = "memories"

const defaultK = 5

type record struct {
	text   string
	vector embedder.Vector
}

// Module is the memories built-in module.
type Module struct {
	mu       sync.Mutex
	records  []record
	embedder embedder.Embedder
	model    string
}

// New returns a memories module. emb may be nil, in which case recall
// falls back to substring matching.
func New(emb embedder.Embedder, model string) *Module {
	return &Module{embedder: emb, model: model}
}

func (m *Module) Name() string    { return Name }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Execute(ctx context.Context, action string, args module.Args) (string, error) {
	switch action {
	case "insert":
		return m.insert(ctx, args)
	case "recall":
		return m.recall(ctx, args)
	default:
		return "", module.NewError(module.ModuleParseError, "memories: unknown action "+action)
	}
}

func (m *Module) insert(ctx context.Context, args module.Args) (string, error) {
	text := args.Get("text")
	if text == "" {
		text = args.Positional(0)
	}
	if text == "" {
		return "", module.NewError(module.ModuleParseError, "memories: text is required")
	}

	rec := record{text: text}
	if m.embedder != nil {
		vectors, err := m.embedder.Embed(ctx, []string{text}, m.model)
		if err != nil {
			return "", module.NewError(module.TransportFailure, err.Error())
		}
		if len(vectors) > 0 {
			rec.vector = embedder.Normalize(vectors[0])
		}
	}

	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()

	return "recorded", nil
}

func (m *Module) recall(ctx context.Context, args module.Args) (string, error) {
	query := args.Get("query")
	if query == "" {
		query = args.Positional(0)
	}
	if query == "" {
		return "", module.NewError(module.ModuleParseError, "memories: query is required")
	}

	k := defaultK
	if raw := args.Get("k"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			k = n
		}
	}

	m.mu.Lock()
	records := append([]record(nil), m.records...)
	m.mu.Unlock()

	var matches []string
	if m.embedder != nil {
		matches = m.recallByEmbedding(ctx, query, records, k)
	} else {
		matches = m.recallBySubstring(query, records, k)
	}

	return strings.Join(matches, "\n"), nil
}

func (m *Module) recallByEmbedding(ctx context.Context, query string, records []record, k int) []string {
	vectors, err := m.embedder.Embed(ctx, []string{query}, m.model)
	if err != nil || len(vectors) == 0 {
		return m.recallBySubstring(query, records, k)
	}
	q := embedder.Normalize(vectors[0])

	type scored struct {
		text  string
		score float32
	}
	ranked := make([]scored, 0, len(records))
	for _, r := range records {
		if len(r.vector) == 0 {
			continue
		}
		ranked = append(ranked, scored{text: r.text, score: innerProduct(q, r.vector)})
	}
	// Stable insertion-order sort, highest score first.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.text
	}
	return out
}

func (m *Module) recallBySubstring(query string, records []record, k int) []string {
	q := strings.ToLower(query)
	var out []string
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.text), q) {
			out = append(out, r.text)
			if len(out) >= k {
				break
			}
		}
	}
	return out
}

func innerProduct(a, b embedder.Vector) float32 {
	var sum float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
