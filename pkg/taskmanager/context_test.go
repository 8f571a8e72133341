package taskmanager

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/config"
)

func TestResolveAliasesText(t *testing.T) {
	aliases, err := resolveAliases([]config.ContextEntry{
		{Alias: "greeting", Kind: config.ContextText, Content: "hello there"},
	}, strings.NewReader(""), &bytes.Buffer{})

	require.NoError(t, err)
	require.Equal(t, "hello there", aliases["greeting"])
}

func TestResolveAliasesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("file contents"), 0o644))

	aliases, err := resolveAliases([]config.ContextEntry{
		{Alias: "notes", Kind: config.ContextFile, Content: path},
	}, strings.NewReader(""), &bytes.Buffer{})

	require.NoError(t, err)
	require.Equal(t, "file contents", aliases["notes"])
}

func TestResolveAliasesFileMissingIsError(t *testing.T) {
	_, err := resolveAliases([]config.ContextEntry{
		{Alias: "notes", Kind: config.ContextFile, Content: filepath.Join(t.TempDir(), "missing.txt")},
	}, strings.NewReader(""), &bytes.Buffer{})

	require.Error(t, err)
}

func TestResolveAliasesUserInputPromptsAndReadsLine(t *testing.T) {
	var out bytes.Buffer
	aliases, err := resolveAliases([]config.ContextEntry{
		{Alias: "name", Kind: config.ContextUserInput, Content: "Your name"},
	}, strings.NewReader("Ada Lovelace\n"), &out)

	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", aliases["name"])
	require.Contains(t, out.String(), "Your name: ")
}

func TestResolveAliasesUserInputWithoutTrailingNewline(t *testing.T) {
	aliases, err := resolveAliases([]config.ContextEntry{
		{Alias: "name", Kind: config.ContextUserInput, Content: "Your name"},
	}, strings.NewReader("Ada"), &bytes.Buffer{})

	require.NoError(t, err)
	require.Equal(t, "Ada", aliases["name"])
}

func TestResolveAliasesUnknownKindIsError(t *testing.T) {
	_, err := resolveAliases([]config.ContextEntry{
		{Alias: "bad", Kind: config.ContextKind("mystery"), Content: "x"},
	}, strings.NewReader(""), &bytes.Buffer{})

	require.Error(t, err)
}

func TestResolveAliasesMultipleEntries(t *testing.T) {
	aliases, err := resolveAliases([]config.ContextEntry{
		{Alias: "a", Kind: config.ContextText, Content: "one"},
		{Alias: "b", Kind: config.ContextText, Content: "two"},
	}, strings.NewReader(""), &bytes.Buffer{})

	require.NoError(t, err)
	require.Len(t, aliases, 2)
	require.Equal(t, "one", aliases["a"])
	require.Equal(t, "two", aliases["b"])
}
