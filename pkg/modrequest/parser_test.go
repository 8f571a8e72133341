package modrequest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBareAndKeyValueArgs(t *testing.T) {
	text := "I'll check the files.\nMODULE_REQUEST: sh run \"ls /t\"\nThen I'll read it."
	reqs, errs, residual := Parse(text)

	require.Empty(t, errs)
	require.Len(t, reqs, 1)
	require.Equal(t, "sh", reqs[0].Module)
	require.Equal(t, "run", reqs[0].Action)
	require.Equal(t, "ls /t", reqs[0].Args["0"])
	require.NotContains(t, residual, "MODULE_REQUEST")
	require.Contains(t, residual, "I'll check the files.")
	require.Contains(t, residual, "Then I'll read it.")
}

func TestParseKeyValueArgs(t *testing.T) {
	reqs, errs, _ := Parse(`MODULE_REQUEST: rag query text="colors of fruit" k=1`)
	require.Empty(t, errs)
	require.Len(t, reqs, 1)
	require.Equal(t, "colors of fruit", reqs[0].Args["text"])
	require.Equal(t, "1", reqs[0].Args["k"])
}

func TestParseInsideCodeFence(t *testing.T) {
	text := "```\nMODULE_REQUEST: fs list /t\n```"
	reqs, errs, _ := Parse(text)
	require.Empty(t, errs)
	require.Len(t, reqs, 1)
	require.Equal(t, "fs", reqs[0].Module)
}

func TestParseMalformedDirectiveYieldsParseError(t *testing.T) {
	reqs, errs, residual := Parse(`MODULE_REQUEST: onlyonetoken`)
	require.Empty(t, reqs)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "ParseError")
	require.NotContains(t, residual, "MODULE_REQUEST")
}

func TestParseUnterminatedQuoteIsParseError(t *testing.T) {
	_, errs, _ := Parse(`MODULE_REQUEST: fs read "unterminated`)
	require.Len(t, errs, 1)
}

func TestCanonicalizeIsOrderIndependentAndWhitespaceNormalized(t *testing.T) {
	a := Canonicalize("fs", "read", map[string]string{"path": "/t/a.txt", "offset": "0"})
	b := Canonicalize("fs", "read", map[string]string{"offset": "0", "path": "/t/a.txt"})
	require.Equal(t, a, b)

	c := Canonicalize("fs", "read", map[string]string{"path": "/t/a.txt  "})
	d := Canonicalize("fs", "read", map[string]string{"path": "/t/a.txt"})
	require.Equal(t, c, d)
}

func TestRenderRoundTrip(t *testing.T) {
	out := Render("fs", "read", "hello world")
	require.Equal(t, "MODULE_RESULT: fs read\nhello world", out)
}
