// Package shmodule implements the sh built-in module (§4.2): run a
// single whitelisted shell command with a bounded timeout. Grounded on
// the teacher's pkg/tools.CommandTool (exec.CommandContext via "sh -c",
// first-token allow-list check, CombinedOutput capturing stdout+stderr
// interleaved) trimmed to the spec's single run(command) action and
// closed DisallowedCommand/ModuleTimeout error kinds.
package shmodule

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/taskforge/taskforge/pkg/module"
)

const Name = "sh"

const defaultTimeout = 60 * time.Second

// Module is the sh built-in module.
type Module struct {
	workingDir      string
	allowedCommands map[string]bool
	timeout         time.Duration
}

// New returns an sh module that only runs commands whose first
// whitespace-delimited token is in allowedCommands.
func New(workingDir string, allowedCommands []string, timeout time.Duration) *Module {
	if workingDir == "" {
		workingDir = "."
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	allowed := make(map[string]bool, len(allowedCommands))
	for _, c := range allowedCommands {
		allowed[c] = true
	}
	return &Module{workingDir: workingDir, allowedCommands: allowed, timeout: timeout}
}

func (m *Module) Name() string    { return Name }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Execute(ctx context.Context, action string, args module.Args) (string, error) {
	if action != "run" {
		return "", module.NewError(module.ModuleParseError, "sh: unknown action "+action)
	}

	command := args.Get("command")
	if command == "" {
		command = args.Positional(0)
	}
	if command == "" {
		return "", module.NewError(module.ModuleParseError, "sh: command is required")
	}

	base := firstToken(command)
	if !m.allowedCommands[base] {
		return "", module.NewError(module.DisallowedCommand, base)
	}

	execCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = m.workingDir

	output, err := cmd.CombinedOutput()
	if execCtx.Err() == context.DeadlineExceeded {
		return "", module.NewError(module.ModuleTimeout, command)
	}

	// Non-zero exit is surfaced in the result text, not as a module error.
	result := string(output)
	if exitErr, ok := err.(*exec.ExitError); ok {
		result += fmt.Sprintf("\n[exit code %d]", exitErr.ExitCode())
	}
	return result, nil
}

// firstToken extracts the base command from the first pipeline segment,
// mirroring the teacher's extractBaseCommand.
func firstToken(command string) string {
	parts := strings.FieldsFunc(command, func(r rune) bool {
		return r == '|' || r == '>' || r == '<' || r == ';'
	})
	if len(parts) == 0 {
		return ""
	}
	fields := strings.Fields(parts[0])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
