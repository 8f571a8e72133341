// Package conversation holds the ordered transcript of messages exchanged
// with the LLM client during a single role activation.
//
// Grounded on the session/event-ordering conventions of the teacher's
// pkg/session.Session (an ordered, append-only event list owned by one
// caller at a time), simplified to the three-valued message role this
// runtime needs.
package conversation

import (
	"fmt"
	"strings"
	"sync"
)

// Role is the conversation-level message tag. It is a distinct namespace
// from the workflow-level agent role (proposer/reviewer/validator/
// formatter).
type Role string

const (
	System    Role = "system"
	User      Role = "user"
	Assistant Role = "assistant"
)

// Message is one entry in the transcript.
type Message struct {
	Role    Role
	Content string
}

// Conversation is an ordered, mutable transcript. It is safe for concurrent
// use, though the spec's concurrency model never calls it from more than
// one goroutine at a time per task.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// New returns an empty conversation.
func New() *Conversation {
	return &Conversation{}
}

// Append adds a message to the end of the transcript. Insertion order is
// preserved; no reordering ever occurs.
func (c *Conversation) Append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Snapshot returns a cheap value copy of the current transcript.
func (c *Conversation) Snapshot() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len reports the number of messages currently in the transcript.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// TruncateTo keeps only the first n messages, discarding the rest.
func (c *Conversation) TruncateTo(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n < len(c.messages) {
		c.messages = c.messages[:n]
	}
}

// ResetWithSystem discards the entire transcript and starts fresh with a
// single system message at index 0. Role activations in the role engine
// use EnterSystem instead, which keeps the existing history.
func (c *Conversation) ResetWithSystem(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = []Message{{Role: System, Content: content}}
}

// ReplaceSystem swaps index 0's content in place, preserving the rest of
// the transcript. It returns an error when index 0 is not a system
// message.
func (c *Conversation) ReplaceSystem(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 || c.messages[0].Role != System {
		return fmt.Errorf("conversation: index 0 is not a system message")
	}
	c.messages[0].Content = content
	return nil
}

// EnterSystem installs content as the system message at index 0,
// replacing any existing one and preserving the rest of the transcript,
// or starting a fresh transcript if this is the first message ever
// appended. This is what a role activation calls at entry (§4.5): the
// previous role's system prompt is swapped out, history is kept.
func (c *Conversation) EnterSystem(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 || c.messages[0].Role != System {
		c.messages = append([]Message{{Role: System, Content: content}}, c.messages...)
		return
	}
	c.messages[0].Content = content
}

// Summarize collapses the entire transcript after the leading system
// message into a single assistant note, bounding the growth that long
// revision loops would otherwise cause. The caller supplies the note text
// (typically produced by an LLM summarization call or, for a cheap
// deterministic fallback, a truncated concatenation of proposal/feedback
// text).
func (c *Conversation) Summarize(note string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return
	}
	head := c.messages[0]
	c.messages = []Message{head, {Role: Assistant, Content: note}}
}

// Render renders the transcript as plain text, used for a deterministic
// summarization fallback and for conversation export.
func Render(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Content)
	}
	return b.String()
}
