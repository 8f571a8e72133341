// Package taskmanager is the top-level driver (§4's task manager): it owns
// a task's state for its lifetime, resolves context aliases, constructs
// the module registry, runs the role/workflow engines to completion, and
// emits terminal events plus the final artifact.
package taskmanager

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/pkg/cache"
	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/conversation"
	"github.com/taskforge/taskforge/pkg/embedder"
	"github.com/taskforge/taskforge/pkg/event"
	"github.com/taskforge/taskforge/pkg/llm"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/outputschema"
	"github.com/taskforge/taskforge/pkg/ratelimit"
	"github.com/taskforge/taskforge/pkg/roleengine"
	"github.com/taskforge/taskforge/pkg/taskerr"
	"github.com/taskforge/taskforge/pkg/workflow"
)

// Result is what a task run produces once the workflow reaches completed.
type Result struct {
	Output             string
	ConversationExport string
}

// Manager drives one task run end to end.
type Manager struct {
	Task     *config.Task
	Client   llm.Client
	Embedder embedder.Embedder
	Sink     event.Sink

	// Stdin/Stdout back user_input context prompts (§3's interactive
	// context resolution). Default to the process's own when nil.
	Stdin  io.Reader
	Stdout io.Writer

	// Tracer opens spans around each role's LLM calls and module
	// dispatch. Nil (the default) disables tracing for the run.
	Tracer *observability.Tracer

	runTaskID string
}

// New builds a Manager for one task run.
func New(task *config.Task, client llm.Client, emb embedder.Embedder, sink event.Sink) *Manager {
	if sink == nil {
		sink = event.NopSink{}
	}
	return &Manager{Task: task, Client: client, Embedder: emb, Sink: sink}
}

// Run resolves the task's context, constructs the module registry and the
// role/workflow engines, and drives the workflow to completed. A fatal
// *taskerr.Error (WorkflowStuck, TurnLimitExceeded, RevisionLimitExceeded,
// Cancelled) is returned unwrapped so the CLI can inspect its Kind for the
// exit code; construction errors are wrapped with the step that failed.
func (m *Manager) Run(ctx context.Context) (*Result, error) {
	taskID := uuid.NewString()
	m.runTaskID = taskID

	stdin := m.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := m.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	aliases, err := resolveAliases(m.Task.Context, stdin, stdout)
	if err != nil {
		return nil, fmt.Errorf("resolve context: %w", err)
	}

	registry, err := buildRegistry(m.Task, m.Embedder)
	if err != nil {
		return nil, fmt.Errorf("build module registry: %w", err)
	}

	limiter, err := ratelimit.NewRateLimiterFromParameters(m.Task.Parameters.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("build rate limiter: %w", err)
	}

	roles := make(map[config.AgentRole]config.AgentEntry, len(m.Task.Agents))
	for _, a := range m.Task.Agents {
		roles[a.Role] = a
	}

	engine := roleengine.New(taskID, registry, cache.New(), m.Client, m.Sink, m.Task.Parameters.LLMModel, m.Task.Parameters.LLMProvider, m.Task.Parameters.TurnLimit)
	engine.Limiter = limiter
	engine.Tracer = m.Tracer

	wf := workflow.New(m.Task.Workflow, m.Task.Parameters.RevisionLimit)

	conv := conversation.New()
	role := wf.InitialRole()
	var lastProposal string

	for role != config.Completed {
		entry, ok := roles[role]
		if !ok {
			return nil, fmt.Errorf("configuration: no agent entry declared for role %q", role)
		}

		act, err := engine.Activate(ctx, entry, conv, aliases)
		if err != nil {
			m.emitTerminal(ctx, role, err)
			return nil, err
		}

		switch {
		case role == config.RoleProposer && act.Outcome == config.OutcomeProposalGenerated:
			lastProposal = act.Text

		case role == config.RoleFormatter && act.Outcome == config.OutcomeExported:
			if verr := outputschema.Validate(entry.Schema, act.Text); verr != nil {
				act.Outcome = config.OutcomeRevisionRequested
				act.Text = verr.Error()
			}
		}

		m.emit(ctx, event.KindTransition, role, map[string]any{"outcome": string(act.Outcome)})

		next, err := wf.Next(role, act.Outcome)
		if err != nil {
			m.emitTerminal(ctx, role, err)
			return nil, err
		}

		if next == config.RoleProposer && act.Outcome == config.OutcomeRevisionRequested {
			workflow.SeedProposerRevision(conv, lastProposal, act.Text, m.Task.Parameters.SummarizeOnRevision, m.Task.Parameters.SummarizeThreshold)
		}

		if role == config.RoleFormatter && act.Outcome == config.OutcomeExported {
			result, werr := m.writeOutput(act.Text, conv)
			if werr != nil {
				m.emitTerminal(ctx, role, werr)
				return nil, werr
			}
			m.emit(ctx, event.KindTerminal, role, map[string]any{"outcome": string(config.OutcomeExported)})
			return result, nil
		}

		role = next
	}

	return nil, taskerr.New(taskerr.WorkflowStuck, "workflow reached completed without an exported formatter outcome")
}

// writeOutput persists the formatter's artifact to task.Output.File and,
// if export_conversation is set, the rendered transcript alongside it at
// "<file>.conversation.txt".
func (m *Manager) writeOutput(text string, conv *conversation.Conversation) (*Result, error) {
	if m.Task.Output.File != "" {
		if err := os.WriteFile(m.Task.Output.File, []byte(text), 0o644); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
	}

	result := &Result{Output: text}
	if m.Task.Parameters.ExportConversation {
		rendered := conversation.Render(conv.Snapshot())
		if m.Task.Output.File != "" {
			if err := os.WriteFile(m.Task.Output.File+".conversation.txt", []byte(rendered), 0o644); err != nil {
				return nil, fmt.Errorf("write conversation export: %w", err)
			}
		}
		result.ConversationExport = rendered
	}
	return result, nil
}

func (m *Manager) emit(ctx context.Context, kind event.Kind, role config.AgentRole, payload map[string]any) {
	_ = m.Sink.Emit(ctx, event.Event{
		ID:        uuid.NewString(),
		TaskID:    m.runTaskID,
		Kind:      kind,
		Role:      string(role),
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

func (m *Manager) emitTerminal(ctx context.Context, role config.AgentRole, err error) {
	m.emit(ctx, event.KindTerminal, role, map[string]any{"error": err.Error()})
}
