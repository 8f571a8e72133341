package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/config/provider"
)

const sampleTask = `
name: find-secret
description: locate a string in a directory
version: "1"
context:
  - alias: base_path
    kind: text
    content: /t
agents:
  - role: proposer
    strategy: default
    system_prompt: "You search files under {base_path}."
    user_prompt: "Find the file containing SECRET_STRING_XYZ."
  - role: reviewer
    strategy: default
    system_prompt: "You review the proposal."
    user_prompt: "Review it."
  - role: validator
    strategy: default
    system_prompt: "You validate the proposal."
    user_prompt: "Validate it."
  - role: formatter
    strategy: default
    system_prompt: "You format the final answer."
    user_prompt: "Format it."
modules:
  - name: sh
    version: "1"
    config:
      allowed_commands: ["ls", "cat"]
  - name: fs
    version: "1"
workflow:
  - from: proposer
    to: reviewer
    condition: proposal_generated
  - from: reviewer
    to: validator
    condition: approved
  - from: reviewer
    to: proposer
    condition: revision_requested
  - from: validator
    to: formatter
    condition: validated
  - from: validator
    to: proposer
    condition: revision_requested
  - from: formatter
    to: completed
    condition: exported
parameters:
  llm_model: gpt-4o
  llm_provider: openai
output:
  format: markdown
  file: ${OUT_DIR}/result.md
`

func TestLoaderLoadAppliesDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("OUT_DIR", "/tmp/out")

	dir := t.TempDir()
	path := filepath.Join(dir, "task.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTask), 0o644))

	p, err := provider.NewFileProvider(path)
	require.NoError(t, err)
	defer p.Close()

	task, err := NewLoader(p).Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, "find-secret", task.Name)
	require.Equal(t, 20, task.Parameters.TurnLimit)
	require.Equal(t, 5, task.Parameters.RevisionLimit)
	require.Equal(t, 1000, task.Parameters.RAG.ChunkSize)
	require.Equal(t, "chromem", task.Parameters.RAG.VectorStore.Type)
	require.Equal(t, "/tmp/out/result.md", task.Output.File)
}

func TestValidateRejectsAmbiguousWorkflow(t *testing.T) {
	task := &Task{
		Name:   "t",
		Agents: []AgentEntry{{Role: RoleReviewer}, {Role: RoleValidator}, {Role: RoleFormatter}},
		Workflow: []WorkflowStep{
			{From: RoleReviewer, To: RoleValidator, Condition: OutcomeApproved},
			{From: RoleReviewer, To: RoleFormatter, Condition: OutcomeApproved},
		},
	}
	err := task.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ambiguous workflow")
}

func TestValidateRejectsUnknownContextKind(t *testing.T) {
	task := &Task{
		Name:    "t",
		Agents:  []AgentEntry{{Role: RoleProposer}},
		Workflow: []WorkflowStep{{From: RoleProposer, To: Completed, Condition: OutcomeExported}},
		Context: []ContextEntry{{Alias: "x", Kind: "bogus"}},
	}
	err := task.Validate()
	require.Error(t, err)
}

func baseValidTask() *Task {
	return &Task{
		Name:     "t",
		Agents:   []AgentEntry{{Role: RoleProposer}},
		Workflow: []WorkflowStep{{From: RoleProposer, To: Completed, Condition: OutcomeExported}},
	}
}

func TestValidateRejectsUnknownEventSinkType(t *testing.T) {
	task := baseValidTask()
	task.Parameters.EventSink.Type = "carrier-pigeon"
	err := task.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "event_sink")
}

func TestValidateRejectsSQLSinkWithoutDSN(t *testing.T) {
	task := baseValidTask()
	task.Parameters.EventSink.Type = "sql"
	err := task.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "sql_dsn")
}

func TestValidateRejectsWebhookSinkWithoutURL(t *testing.T) {
	task := baseValidTask()
	task.Parameters.EventSink.Type = "webhook"
	err := task.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "webhook_url")
}

func TestValidateAcceptsEmptyEventSink(t *testing.T) {
	task := baseValidTask()
	require.NoError(t, task.Validate())
}

func TestSetDefaultsFillsSQLDialect(t *testing.T) {
	task := baseValidTask()
	task.Parameters.EventSink.Type = "sql"
	task.SetDefaults()
	require.Equal(t, "sqlite3", task.Parameters.EventSink.SQLDialect)
}
