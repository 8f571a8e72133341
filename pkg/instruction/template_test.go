package instruction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesKnownAliases(t *testing.T) {
	out := Render("Review against {requirements} for {project}.", map[string]string{
		"requirements": "the spec",
		"project":      "taskforge",
	})
	require.Equal(t, "Review against the spec for taskforge.", out)
}

func TestRenderLeavesUnknownAliasUntouched(t *testing.T) {
	out := Render("Hello {unknown}", map[string]string{})
	require.Equal(t, "Hello {unknown}", out)
}
