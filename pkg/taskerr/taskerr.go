// Package taskerr declares the fatal error taxonomy (§7's WorkflowError
// and Cancelled kinds) shared by the role engine, the workflow engine,
// and the task manager. Unlike module.Error (non-fatal, recovered by
// injection into the conversation), these errors terminate the task.
package taskerr

import "fmt"

// Kind is the closed set of fatal task-terminating error kinds.
type Kind string

const (
	WorkflowStuck          Kind = "WorkflowStuck"
	TurnLimitExceeded      Kind = "TurnLimitExceeded"
	RevisionLimitExceeded  Kind = "RevisionLimitExceeded"
	Cancelled              Kind = "Cancelled"
)

// Error is a fatal, task-terminating failure.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// New constructs an Error.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}
