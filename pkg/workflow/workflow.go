// Package workflow implements the state machine (§4.6) that advances a
// task across roles: given the current role's outcome, it finds the
// unique declared edge and returns the next role, enforcing the global
// revision budget along the way.
package workflow

import (
	"fmt"

	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/conversation"
	"github.com/taskforge/taskforge/pkg/taskerr"
)

// Engine walks a task's declared workflow edges. One Engine is built per
// task run; its revision counter is task-scoped.
type Engine struct {
	steps         []config.WorkflowStep
	revisionLimit int
	revisions     int
}

// New builds an Engine over the task's declared edges. Ambiguity (two
// edges sharing (from, condition)) is rejected at config load time
// (config.Task.Validate), not here.
func New(steps []config.WorkflowStep, revisionLimit int) *Engine {
	if revisionLimit <= 0 {
		revisionLimit = 5
	}
	return &Engine{steps: steps, revisionLimit: revisionLimit}
}

// InitialRole is always the proposer (§4.6: "in practice always
// proposer").
func (e *Engine) InitialRole() config.AgentRole {
	return config.RoleProposer
}

// Next finds the edge matching (from, outcome) and returns its
// destination. A transition back to the proposer under
// revision_requested counts against the revision budget; exhausting it
// is fatal (taskerr.RevisionLimitExceeded). No matching edge is fatal
// (taskerr.WorkflowStuck).
func (e *Engine) Next(from config.AgentRole, outcome config.Outcome) (config.AgentRole, error) {
	var to config.AgentRole
	found := false
	for _, step := range e.steps {
		if step.From == from && step.Condition == outcome {
			to = step.To
			found = true
			break
		}
	}
	if !found {
		return "", taskerr.New(taskerr.WorkflowStuck, fmt.Sprintf("no edge for (%s, %s)", from, outcome))
	}

	if to == config.RoleProposer && outcome == config.OutcomeRevisionRequested {
		e.revisions++
		if e.revisions > e.revisionLimit {
			return "", taskerr.New(taskerr.RevisionLimitExceeded, fmt.Sprintf("exceeded %d proposer revisions", e.revisionLimit))
		}
	}

	return to, nil
}

// SeedProposerRevision prepares the next proposer activation after a
// revision_requested outcome (§4.6): the seed text carries the prior
// proposal and the most recent feedback, appended as a user message.
//
// Across many revision cycles the shared conversation otherwise grows
// without bound (§4.10's supplemented mitigation), since only this one
// transition edge ever touches conversation size. Once the transcript
// reaches summarizeThreshold messages, this collapses everything after
// the leading system message into a single assistant note
// (conversation.Summarize) carrying the seed text, rather than appending
// on top of an ever-growing transcript. Below the threshold, or when
// summarizeOnRevision is off, the seed is just appended — small
// conversations keep their full detail for the next proposer turn.
func SeedProposerRevision(conv *conversation.Conversation, proposal, feedback string, summarizeOnRevision bool, summarizeThreshold int) {
	seed := fmt.Sprintf("Prior proposal:\n%s\n\nFeedback:\n%s", proposal, feedback)
	if summarizeOnRevision && summarizeThreshold > 0 && conv.Len() >= summarizeThreshold {
		conv.Summarize(seed)
		return
	}
	conv.Append(conversation.User, seed)
}
