package memoriesmodule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/module"
)

func TestRecallBySubstringWithoutEmbedder(t *testing.T) {
	m := New(nil, "")
	_, err := m.Execute(context.Background(), "insert", module.Args{"text": "the fox is quick"})
	require.NoError(t, err)
	_, err = m.Execute(context.Background(), "insert", module.Args{"text": "the dog is lazy"})
	require.NoError(t, err)

	out, err := m.Execute(context.Background(), "recall", module.Args{"query": "fox"})
	require.NoError(t, err)
	require.Contains(t, out, "fox")
	require.NotContains(t, out, "dog")
}

func TestInsertRequiresText(t *testing.T) {
	m := New(nil, "")
	_, err := m.Execute(context.Background(), "insert", module.Args{})
	var modErr *module.Error
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, module.ModuleParseError, modErr.Kind)
}
