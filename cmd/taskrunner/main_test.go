package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/taskerr"
)

func TestExitCodeForTaskErrKinds(t *testing.T) {
	cases := []struct {
		kind taskerr.Kind
		want int
	}{
		{taskerr.WorkflowStuck, 3},
		{taskerr.TurnLimitExceeded, 4},
		{taskerr.RevisionLimitExceeded, 5},
		{taskerr.Cancelled, 6},
	}
	for _, c := range cases {
		require.Equal(t, c.want, exitCodeFor(taskerr.New(c.kind, "detail")))
	}
}

func TestExitCodeForNonTaskErrIsOne(t *testing.T) {
	require.Equal(t, 1, exitCodeFor(errors.New("boom")))
}

func TestPrintSchemaEncodesValidJSON(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	code := printSchema()
	require.NoError(t, w.Close())
	os.Stdout = orig

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)

	require.Equal(t, 0, code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "Taskforge Task Schema", decoded["title"])
}
