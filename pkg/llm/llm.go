// Package llm declares the LLM client boundary the runtime consumes.
//
// The concrete provider clients — credential handling, HTTP framing of
// chat completions, retries — are explicitly out of scope (§6 "external
// collaborators"); the core only depends on the Client interface below.
// The Message shape mirrors the teacher's pkg/llms.Message (role/content
// pair), trimmed to the three conversation-level roles this runtime uses
// since tool-call framing is handled by the module-request protocol
// instead of native function calling.
package llm

import (
	"context"

	"github.com/taskforge/taskforge/pkg/conversation"
)

// Message is one request/response unit exchanged with a provider.
type Message struct {
	Role    conversation.Role
	Content string
}

// Client is a stateless request executor: given an ordered conversation,
// it returns exactly one assistant message. Implementations own
// credential handling, HTTP framing, retries, and provider selection by
// name; the core only ever calls Complete.
type Client interface {
	// Complete sends messages, in order, to the named model/provider and
	// returns the single resulting assistant message. Message order must
	// be preserved by the implementation.
	Complete(ctx context.Context, messages []Message, model, provider string) (Message, error)
}

// ToMessages converts a conversation snapshot to the wire Message shape
// the Client contract expects.
func ToMessages(snapshot []conversation.Message) []Message {
	out := make([]Message, len(snapshot))
	for i, m := range snapshot {
		out[i] = Message{Role: m.Role, Content: m.Content}
	}
	return out
}
