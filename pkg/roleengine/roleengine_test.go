package roleengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/cache"
	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/conversation"
	"github.com/taskforge/taskforge/pkg/llm"
	"github.com/taskforge/taskforge/pkg/module"
	"github.com/taskforge/taskforge/pkg/ratelimit"
)

// scriptedClient replays a fixed sequence of assistant replies, one per
// Complete call, so a turn loop can be driven deterministically.
type scriptedClient struct {
	replies []string
	calls   int
}

func (c *scriptedClient) Complete(ctx context.Context, messages []llm.Message, model, provider string) (llm.Message, error) {
	reply := c.replies[c.calls]
	c.calls++
	return llm.Message{Role: conversation.Assistant, Content: reply}, nil
}

// echoModule returns its action name plus the first positional arg.
type echoModule struct{ calls int }

func (m *echoModule) Name() string    { return "fs" }
func (m *echoModule) Version() string { return "1.0.0" }
func (m *echoModule) Execute(ctx context.Context, action string, args module.Args) (string, error) {
	m.calls++
	return action + ":" + args.Positional(0), nil
}

func newEngine(t *testing.T, client *scriptedClient) (*Engine, *echoModule) {
	t.Helper()
	reg := module.NewRegistry()
	em := &echoModule{}
	require.NoError(t, reg.Register(em))
	return New("task-1", reg, cache.New(), client, nil, "gpt-4", "openai", 20), em
}

func TestActivateProposerNoModuleRequests(t *testing.T) {
	client := &scriptedClient{replies: []string{"Proposal: do the thing"}}
	engine, _ := newEngine(t, client)

	conv := conversation.New()
	role := config.AgentEntry{Role: config.RoleProposer, SystemPrompt: "You propose.", UserPrompt: "Go."}

	act, err := engine.Activate(context.Background(), role, conv, nil)
	require.NoError(t, err)
	require.Equal(t, config.OutcomeProposalGenerated, act.Outcome)
	require.Equal(t, "do the thing", act.Text)
}

func TestActivateDispatchesModuleRequestThenCompletes(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"MODULE_REQUEST: fs list /t\nlooking around",
		"Proposal: found it",
	}}
	engine, em := newEngine(t, client)

	conv := conversation.New()
	role := config.AgentEntry{Role: config.RoleProposer, SystemPrompt: "sys", UserPrompt: "go"}

	act, err := engine.Activate(context.Background(), role, conv, nil)
	require.NoError(t, err)
	require.Equal(t, config.OutcomeProposalGenerated, act.Outcome)
	require.Equal(t, "found it", act.Text)
	require.Equal(t, 1, em.calls)

	snap := conv.Snapshot()
	var sawResult bool
	for _, m := range snap {
		if m.Role == conversation.User && m.Content == "MODULE_RESULT: fs list\nlist:/t" {
			sawResult = true
		}
	}
	require.True(t, sawResult)
}

func TestActivateCachesRepeatedIdenticalRequest(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"MODULE_REQUEST: fs list /t\nfirst",
		"MODULE_REQUEST: fs list /t\nsecond",
		"Proposal: done",
	}}
	engine, em := newEngine(t, client)

	conv := conversation.New()
	role := config.AgentEntry{Role: config.RoleProposer, SystemPrompt: "sys", UserPrompt: "go"}

	_, err := engine.Activate(context.Background(), role, conv, nil)
	require.NoError(t, err)
	require.Equal(t, 1, em.calls)
}

func TestActivateReviewerApproved(t *testing.T) {
	client := &scriptedClient{replies: []string{"Approved"}}
	engine, _ := newEngine(t, client)

	conv := conversation.New()
	role := config.AgentEntry{Role: config.RoleReviewer, SystemPrompt: "sys", UserPrompt: "go"}

	act, err := engine.Activate(context.Background(), role, conv, nil)
	require.NoError(t, err)
	require.Equal(t, config.OutcomeApproved, act.Outcome)
}

func TestActivateValidatorNotValid(t *testing.T) {
	client := &scriptedClient{replies: []string{"Not valid: missing citation"}}
	engine, _ := newEngine(t, client)

	conv := conversation.New()
	role := config.AgentEntry{Role: config.RoleValidator, SystemPrompt: "sys", UserPrompt: "go"}

	act, err := engine.Activate(context.Background(), role, conv, nil)
	require.NoError(t, err)
	require.Equal(t, config.OutcomeRevisionRequested, act.Outcome)
	require.Equal(t, "missing citation", act.Text)
}

func TestActivateTurnLimitExceeded(t *testing.T) {
	replies := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		replies = append(replies, "MODULE_REQUEST: fs list /t\nagain")
	}
	client := &scriptedClient{replies: replies}
	engine, _ := newEngine(t, client)
	engine.TurnLimit = 3

	conv := conversation.New()
	role := config.AgentEntry{Role: config.RoleProposer, SystemPrompt: "sys", UserPrompt: "go"}

	_, err := engine.Activate(context.Background(), role, conv, nil)
	require.Error(t, err)
	require.Equal(t, 3, client.calls, "exactly TurnLimit LLM calls should run before TurnLimitExceeded fires")
}

func TestActivateSubstitutesAliases(t *testing.T) {
	client := &scriptedClient{replies: []string{"Proposal: ok"}}
	engine, _ := newEngine(t, client)

	conv := conversation.New()
	role := config.AgentEntry{
		Role:         config.RoleProposer,
		SystemPrompt: "Work on {topic}.",
		UserPrompt:   "Topic: {topic}",
	}

	_, err := engine.Activate(context.Background(), role, conv, map[string]string{"topic": "widgets"})
	require.NoError(t, err)

	snap := conv.Snapshot()
	require.Equal(t, "Work on widgets.", snap[0].Content)
}

func TestActivateStopsWhenRateLimitExhausted(t *testing.T) {
	client := &scriptedClient{replies: []string{"Proposal: ok"}}
	engine, _ := newEngine(t, client)

	limiter, err := ratelimit.NewRateLimiterFromParameters(config.RateLimitParameters{
		Enabled: true,
		Limits:  []config.RateLimitRule{{Type: "count", Window: "minute", Limit: 1}},
	})
	require.NoError(t, err)
	engine.Limiter = limiter
	_, err = limiter.CheckAndRecord(context.Background(), ratelimit.ScopeSession, "task-1", 0, 1)
	require.NoError(t, err)

	conv := conversation.New()
	role := config.AgentEntry{Role: config.RoleProposer, SystemPrompt: "sys", UserPrompt: "go"}

	_, err = engine.Activate(context.Background(), role, conv, nil)
	require.Error(t, err)
	require.Equal(t, 0, client.calls)
}
