package shmodule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/module"
)

func TestRunAllowedCommandReturnsOutput(t *testing.T) {
	m := New(".", []string{"echo"}, time.Second)
	out, err := m.Execute(context.Background(), "run", module.Args{"0": "echo hi"})
	require.NoError(t, err)
	require.Contains(t, out, "hi")
}

func TestRunDisallowedCommand(t *testing.T) {
	m := New(".", []string{"echo"}, time.Second)
	_, err := m.Execute(context.Background(), "run", module.Args{"0": "rm -rf /"})
	var modErr *module.Error
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, module.DisallowedCommand, modErr.Kind)
}

func TestRunTimeout(t *testing.T) {
	m := New(".", []string{"sleep"}, 10*time.Millisecond)
	_, err := m.Execute(context.Background(), "run", module.Args{"0": "sleep 1"})
	var modErr *module.Error
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, module.ModuleTimeout, modErr.Kind)
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	m := New(".", []string{"false"}, time.Second)
	out, err := m.Execute(context.Background(), "run", module.Args{"0": "false"})
	require.NoError(t, err)
	require.Contains(t, out, "exit code")
}
