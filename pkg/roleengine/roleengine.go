// Package roleengine runs one role activation (§4.5): it assembles the
// role's system/user prompts, drives the turn loop against the LLM
// client, dispatches module requests the assistant emits, and returns the
// role's outcome once a terminal marker appears in assistant text.
package roleengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/pkg/cache"
	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/conversation"
	"github.com/taskforge/taskforge/pkg/event"
	"github.com/taskforge/taskforge/pkg/instruction"
	"github.com/taskforge/taskforge/pkg/llm"
	"github.com/taskforge/taskforge/pkg/modrequest"
	"github.com/taskforge/taskforge/pkg/module"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/ratelimit"
	"github.com/taskforge/taskforge/pkg/taskerr"
)

// Activation is the outcome of one role activation: the closed-set
// workflow outcome plus the text the workflow/task manager needs
// (proposal body, feedback body, or exported artifact, per role).
type Activation struct {
	Outcome config.Outcome
	Text    string
}

// Engine drives role activations for a single task run. One Engine is
// built per task; it is not shared across tasks (module state, the
// cache, and the event sink are all task-scoped per §5).
type Engine struct {
	TaskID    string
	Registry  *module.Registry
	Cache     *cache.Cache
	Client    llm.Client
	Sink      event.Sink
	Model     string
	Provider  string
	TurnLimit int

	// Limiter throttles outbound LLM calls when the task declares
	// parameters.rate_limit. Nil (the default) means unthrottled —
	// ratelimit.NewRateLimiterFromParameters itself returns nil when
	// rate limiting is disabled, so the common case never pays for it.
	Limiter ratelimit.RateLimiter

	// Tracer opens spans around LLM calls and module dispatch. A nil
	// Tracer (the default) is the no-op case.
	Tracer *observability.Tracer
}

// New builds an Engine. turnLimit <= 0 falls back to the spec default of
// 20 module-request cycles per role activation.
func New(taskID string, registry *module.Registry, c *cache.Cache, client llm.Client, sink event.Sink, model, provider string, turnLimit int) *Engine {
	if turnLimit <= 0 {
		turnLimit = 20
	}
	if sink == nil {
		sink = event.NopSink{}
	}
	return &Engine{
		TaskID:    taskID,
		Registry:  registry,
		Cache:     c,
		Client:    client,
		Sink:      sink,
		Model:     model,
		Provider:  provider,
		TurnLimit: turnLimit,
	}
}

// Activate runs one role activation against conv, mutating it in place:
// the role's system prompt replaces the previous one (conv.EnterSystem),
// its user prompt is appended, and the turn loop runs until the
// assistant produces text with no further module requests. aliases
// resolves {alias} placeholders in both prompt templates.
func (e *Engine) Activate(ctx context.Context, role config.AgentEntry, conv *conversation.Conversation, aliases map[string]string) (act Activation, actErr error) {
	activationStart := time.Now()
	eventID := uuid.NewString()
	ctx, span := e.Tracer.StartAgentRun(ctx, eventID, string(role.Role), e.TaskID, e.Model, e.Provider)
	defer func() {
		e.Tracer.RecordError(span, actErr)
		span.End()
		metrics := observability.GetGlobalMetrics()
		metrics.RecordAgentCall(ctx, time.Since(activationStart), 0, actErr)
		metrics.RecordSession(ctx, string(role.Role), time.Since(activationStart), actErr == nil)
	}()

	conv.EnterSystem(instruction.Render(role.SystemPrompt, aliases))
	conv.Append(conversation.User, instruction.Render(role.UserPrompt, aliases))

	var finalText string
	var turns int
	for cycle := 0; ; cycle++ {
		turns = cycle + 1
		if cycle >= e.TurnLimit {
			return Activation{Outcome: config.OutcomeError}, taskerr.New(taskerr.TurnLimitExceeded, fmt.Sprintf("exceeded %d module-request cycles", e.TurnLimit))
		}

		if e.Limiter != nil {
			res, err := e.Limiter.CheckAndRecord(ctx, ratelimit.ScopeSession, e.TaskID, 0, 1)
			if err != nil {
				return Activation{Outcome: config.OutcomeError}, fmt.Errorf("rate limit: %w", err)
			}
			if !res.Allowed {
				return Activation{Outcome: config.OutcomeError}, fmt.Errorf("rate limit: %w", ratelimit.NewRateLimitError(res))
			}
		}

		llmStart := time.Now()
		spanCtx, span := e.Tracer.StartLLMCall(ctx, e.Model, cycle)
		reply, err := e.Client.Complete(spanCtx, llm.ToMessages(conv.Snapshot()), e.Model, e.Provider)
		e.Tracer.RecordError(span, err)
		span.End()
		observability.GetGlobalMetrics().RecordLLMCall(ctx, e.Model, time.Since(llmStart), 0, 0, err)
		if err != nil {
			return Activation{Outcome: config.OutcomeError}, fmt.Errorf("llm complete: %w", err)
		}
		conv.Append(conversation.Assistant, reply.Content)

		requests, parseErrs, residual := modrequest.Parse(reply.Content)
		if len(requests) == 0 && len(parseErrs) == 0 {
			finalText = strings.TrimSpace(residual)
			break
		}

		for _, perr := range parseErrs {
			body := modrequest.RenderError(string(module.ModuleParseError), perr.Msg)
			conv.Append(conversation.User, body)
		}

		for _, req := range requests {
			e.emit(ctx, event.KindModuleRequest, string(role.Role), map[string]any{
				"module": req.Module,
				"action": req.Action,
				"args":   req.Args,
			})

			result, execErr := e.dispatch(ctx, req, string(role.Role))

			var body string
			if execErr != nil {
				var merr *module.Error
				kind, detail := module.TransportFailure, execErr.Error()
				if asModuleError(execErr, &merr) {
					kind, detail = merr.Kind, merr.Detail
				}
				body = modrequest.RenderError(string(kind), detail)
			} else {
				body = modrequest.Render(req.Module, req.Action, result)
			}
			conv.Append(conversation.User, body)

			e.emit(ctx, event.KindModuleResult, string(role.Role), map[string]any{
				"module": req.Module,
				"action": req.Action,
				"body":   body,
			})
		}
	}

	outcome, text := detectOutcome(role.Role, finalText)
	e.emit(ctx, event.KindRoleOutcome, string(role.Role), map[string]any{
		"outcome": string(outcome),
	})
	observability.GetGlobalMetrics().RecordConversationTurn(ctx, string(role.Role), turns)
	return Activation{Outcome: outcome, Text: text}, nil
}

// dispatch consults the cache before invoking the module, storing only
// successful results (§4.4).
func (e *Engine) dispatch(ctx context.Context, req modrequest.Request, role string) (string, error) {
	key := cache.Key{TaskID: e.TaskID, Module: req.Module, Action: req.Action, Args: req.Args}
	if cached, ok := e.Cache.Get(key); ok {
		return cached, nil
	}

	mod, err := e.Registry.MustGet(req.Module)
	if err != nil {
		return "", module.NewError(module.ModuleParseError, err.Error())
	}

	start := time.Now()
	spanCtx, span := e.Tracer.StartToolExecution(ctx, req.Module, e.TaskID, role)
	result, err := mod.Execute(spanCtx, req.Action, module.Args(req.Args))
	e.Tracer.RecordError(span, err)
	span.End()
	observability.GetGlobalMetrics().RecordToolExecution(ctx, req.Module, time.Since(start), err)
	if err != nil {
		return "", err
	}
	e.Cache.Store(key, result)
	return result, nil
}

func (e *Engine) emit(ctx context.Context, kind event.Kind, role string, payload map[string]any) {
	_ = e.Sink.Emit(ctx, event.Event{
		ID:        uuid.NewString(),
		TaskID:    e.TaskID,
		Kind:      kind,
		Role:      role,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// asModuleError reports whether err is a *module.Error, writing it into
// *out on success. A small helper rather than a bare type assertion so
// the call site reads as a boolean check.
func asModuleError(err error, out **module.Error) bool {
	merr, ok := err.(*module.Error)
	if ok {
		*out = merr
	}
	return ok
}
