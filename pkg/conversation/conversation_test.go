package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetWithSystemIsSoleMessageAtIndexZero(t *testing.T) {
	c := New()
	c.Append(System, "old prompt")
	c.Append(User, "hi")
	c.Append(Assistant, "hello")

	c.ResetWithSystem("new prompt")

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, System, snap[0].Role)
	require.Equal(t, "new prompt", snap[0].Content)
}

func TestAppendPreservesOrder(t *testing.T) {
	c := New()
	c.Append(System, "s")
	c.Append(User, "u1")
	c.Append(Assistant, "a1")
	c.Append(User, "u2")

	snap := c.Snapshot()
	require.Equal(t, []Role{System, User, Assistant, User}, []Role{snap[0].Role, snap[1].Role, snap[2].Role, snap[3].Role})
}

func TestTruncateTo(t *testing.T) {
	c := New()
	c.Append(System, "s")
	c.Append(User, "u1")
	c.Append(Assistant, "a1")

	c.TruncateTo(1)
	require.Equal(t, 1, c.Len())

	c.TruncateTo(100)
	require.Equal(t, 1, c.Len())
}

func TestSummarizeKeepsSystemMessage(t *testing.T) {
	c := New()
	c.Append(System, "s")
	c.Append(User, "u1")
	c.Append(Assistant, "a1")
	c.Append(User, "u2")

	c.Summarize("condensed history")

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, System, snap[0].Role)
	require.Equal(t, Assistant, snap[1].Role)
	require.Equal(t, "condensed history", snap[1].Content)
}

func TestEnterSystemOnEmptyConversationStartsFresh(t *testing.T) {
	c := New()
	c.EnterSystem("first prompt")

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "first prompt", snap[0].Content)
}

func TestEnterSystemPreservesHistory(t *testing.T) {
	c := New()
	c.Append(System, "old")
	c.Append(User, "u1")
	c.Append(Assistant, "a1")

	c.EnterSystem("new")

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, "new", snap[0].Content)
	require.Equal(t, "u1", snap[1].Content)
	require.Equal(t, "a1", snap[2].Content)
}

func TestReplaceSystemRequiresLeadingSystemMessage(t *testing.T) {
	c := New()
	err := c.ReplaceSystem("x")
	require.Error(t, err)

	c.Append(System, "s")
	require.NoError(t, c.ReplaceSystem("s2"))
	require.Equal(t, "s2", c.Snapshot()[0].Content)
}
