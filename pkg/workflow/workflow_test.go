package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/conversation"
	"github.com/taskforge/taskforge/pkg/taskerr"
)

func standardSteps() []config.WorkflowStep {
	return []config.WorkflowStep{
		{From: config.RoleProposer, To: config.RoleReviewer, Condition: config.OutcomeProposalGenerated},
		{From: config.RoleReviewer, To: config.RoleProposer, Condition: config.OutcomeRevisionRequested},
		{From: config.RoleReviewer, To: config.RoleValidator, Condition: config.OutcomeApproved},
		{From: config.RoleValidator, To: config.RoleProposer, Condition: config.OutcomeRevisionRequested},
		{From: config.RoleValidator, To: config.RoleFormatter, Condition: config.OutcomeValidated},
		{From: config.RoleFormatter, To: config.Completed, Condition: config.OutcomeExported},
	}
}

func TestNextFollowsDeclaredEdge(t *testing.T) {
	e := New(standardSteps(), 5)
	to, err := e.Next(config.RoleProposer, config.OutcomeProposalGenerated)
	require.NoError(t, err)
	require.Equal(t, config.RoleReviewer, to)
}

func TestNextReachesCompleted(t *testing.T) {
	e := New(standardSteps(), 5)
	to, err := e.Next(config.RoleFormatter, config.OutcomeExported)
	require.NoError(t, err)
	require.Equal(t, config.Completed, to)
}

func TestNextNoMatchingEdgeIsWorkflowStuck(t *testing.T) {
	e := New(standardSteps(), 5)
	_, err := e.Next(config.RoleProposer, config.OutcomeApproved)
	require.Error(t, err)
	var terr *taskerr.Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, taskerr.WorkflowStuck, terr.Kind)
}

func TestRevisionBudgetExhausted(t *testing.T) {
	e := New(standardSteps(), 2)

	_, err := e.Next(config.RoleReviewer, config.OutcomeRevisionRequested)
	require.NoError(t, err)
	_, err = e.Next(config.RoleReviewer, config.OutcomeRevisionRequested)
	require.NoError(t, err)

	_, err = e.Next(config.RoleReviewer, config.OutcomeRevisionRequested)
	require.Error(t, err)
	var terr *taskerr.Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, taskerr.RevisionLimitExceeded, terr.Kind)
}

func TestRevisionBudgetCountsAcrossBothReviewingRoles(t *testing.T) {
	e := New(standardSteps(), 1)

	_, err := e.Next(config.RoleReviewer, config.OutcomeRevisionRequested)
	require.NoError(t, err)

	_, err = e.Next(config.RoleValidator, config.OutcomeRevisionRequested)
	require.Error(t, err)
	var terr *taskerr.Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, taskerr.RevisionLimitExceeded, terr.Kind)
}

func TestNonRevisionTransitionsDoNotConsumeBudget(t *testing.T) {
	e := New(standardSteps(), 1)

	for i := 0; i < 10; i++ {
		_, err := e.Next(config.RoleProposer, config.OutcomeProposalGenerated)
		require.NoError(t, err)
	}
}

func TestInitialRoleIsProposer(t *testing.T) {
	e := New(standardSteps(), 5)
	require.Equal(t, config.RoleProposer, e.InitialRole())
}

func TestSeedProposerRevisionAppendsBelowThreshold(t *testing.T) {
	conv := conversation.New()
	conv.ResetWithSystem("old system")
	conv.Append(conversation.User, "old user turn")
	conv.Append(conversation.Assistant, "old assistant turn")

	SeedProposerRevision(conv, "prior proposal text", "fix the citations", true, 40)

	snap := conv.Snapshot()
	require.Len(t, snap, 4)
	last := snap[len(snap)-1]
	require.Equal(t, conversation.User, last.Role)
	require.Contains(t, last.Content, "prior proposal text")
	require.Contains(t, last.Content, "fix the citations")
}

func TestSeedProposerRevisionSummarizesAboveThreshold(t *testing.T) {
	conv := conversation.New()
	conv.ResetWithSystem("old system")
	for i := 0; i < 10; i++ {
		conv.Append(conversation.User, "turn")
	}

	SeedProposerRevision(conv, "prior proposal text", "fix the citations", true, 5)

	snap := conv.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, conversation.System, snap[0].Role)
	require.Equal(t, "old system", snap[0].Content)
	require.Equal(t, conversation.Assistant, snap[1].Role)
	require.Contains(t, snap[1].Content, "prior proposal text")
	require.Contains(t, snap[1].Content, "fix the citations")
}

func TestSeedProposerRevisionDisabledNeverSummarizes(t *testing.T) {
	conv := conversation.New()
	conv.ResetWithSystem("old system")
	for i := 0; i < 10; i++ {
		conv.Append(conversation.User, "turn")
	}

	SeedProposerRevision(conv, "prior proposal text", "fix the citations", false, 5)

	require.Equal(t, 12, conv.Len())
}
