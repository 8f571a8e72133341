// Package ragmodule implements the rag built-in module (§4.2), wrapping
// a pkg/rag.Store behind the module.Module contract: index(source_path |
// raw_text, document_id) and query(text, k).
package ragmodule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/taskforge/taskforge/pkg/module"
	"github.com/taskforge/taskforge/pkg/rag"
)

const Name = "rag"

const defaultK = 5

// Module is the rag built-in module.
type Module struct {
	store *rag.Store
}

// New wraps store as the rag module.
func New(store *rag.Store) *Module {
	return &Module{store: store}
}

func (m *Module) Name() string    { return Name }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Execute(ctx context.Context, action string, args module.Args) (string, error) {
	switch action {
	case "index":
		return m.index(ctx, args)
	case "query":
		return m.query(ctx, args)
	default:
		return "", module.NewError(module.ModuleParseError, "rag: unknown action "+action)
	}
}

func (m *Module) index(ctx context.Context, args module.Args) (string, error) {
	documentID := args.Get("document_id")
	if documentID == "" {
		return "", module.NewError(module.ModuleParseError, "rag: document_id is required")
	}

	doc := rag.Document{ID: documentID}
	if sourcePath := args.Get("source_path"); sourcePath != "" {
		doc.SourcePath = sourcePath
	} else if rawText := args.Get("raw_text"); rawText != "" {
		doc.Content = rawText
	} else {
		return "", module.NewError(module.ModuleParseError, "rag: source_path or raw_text is required")
	}

	n, err := m.store.Index(ctx, doc)
	if err != nil {
		return "", module.NewError(module.TransportFailure, err.Error())
	}
	return fmt.Sprintf("indexed %d chunk(s) as %s", n, documentID), nil
}

func (m *Module) query(ctx context.Context, args module.Args) (string, error) {
	text := args.Get("text")
	if text == "" {
		text = args.Positional(0)
	}
	if text == "" {
		return "", module.NewError(module.ModuleParseError, "rag: text is required")
	}

	k := defaultK
	if raw := args.Get("k"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			k = n
		}
	}

	results, err := m.store.Query(ctx, text, k)
	if err != nil {
		return "", module.NewError(module.TransportFailure, err.Error())
	}
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, r := range results {
		documentID := metadataString(r.Metadata["document_id"])
		chunkIndex := metadataString(r.Metadata["chunk_index"])
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s#%s] %s", documentID, chunkIndex, r.Content)
	}
	return b.String(), nil
}

// metadataString renders a metadata value regardless of whether the
// backing provider round-trips it as a string (chromem stores metadata
// as map[string]string) or preserves its original type (qdrant/pinecone
// payload values).
func metadataString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
