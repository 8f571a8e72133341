// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config decodes a task definition document into a Task and resolves
// its context aliases.
package config

import "fmt"

// ContextKind identifies how a context alias's content is obtained.
type ContextKind string

const (
	ContextText      ContextKind = "text"
	ContextFile      ContextKind = "file"
	ContextUserInput ContextKind = "user_input"
)

// ContextEntry is one named input substituted into role prompts via
// {alias} placeholders.
type ContextEntry struct {
	Alias   string      `yaml:"alias" mapstructure:"alias"`
	Kind    ContextKind `yaml:"kind" mapstructure:"kind"`
	Content string      `yaml:"content" mapstructure:"content"`
}

// AgentRole is the closed set of workflow-level roles.
type AgentRole string

const (
	RoleProposer  AgentRole = "proposer"
	RoleReviewer  AgentRole = "reviewer"
	RoleValidator AgentRole = "validator"
	RoleFormatter AgentRole = "formatter"
)

// AgentEntry declares one role's strategy and prompt templates.
type AgentEntry struct {
	Role         AgentRole      `yaml:"role" mapstructure:"role"`
	Strategy     string         `yaml:"strategy" mapstructure:"strategy"`
	SystemPrompt string         `yaml:"system_prompt" mapstructure:"system_prompt"`
	UserPrompt   string         `yaml:"user_prompt" mapstructure:"user_prompt"`
	Schema       map[string]any `yaml:"schema,omitempty" mapstructure:"schema"`
}

// ModuleEntry declares one module instance and its configuration.
type ModuleEntry struct {
	Name    string         `yaml:"name" mapstructure:"name"`
	Version string         `yaml:"version" mapstructure:"version"`
	Config  map[string]any `yaml:"config,omitempty" mapstructure:"config"`
}

// Outcome is the closed set of role-activation results that drive workflow
// transitions.
type Outcome string

const (
	OutcomeProposalGenerated Outcome = "proposal_generated"
	OutcomeRevisionRequested Outcome = "revision_requested"
	OutcomeApproved          Outcome = "approved"
	OutcomeValidated         Outcome = "validated"
	OutcomeExported          Outcome = "exported"
	OutcomeError             Outcome = "error"
)

// Completed is the workflow graph's sentinel terminal node.
const Completed AgentRole = "completed"

// WorkflowStep is one declared edge (from_role, to_role, condition).
type WorkflowStep struct {
	From      AgentRole `yaml:"from" mapstructure:"from"`
	To        AgentRole `yaml:"to" mapstructure:"to"`
	Condition Outcome   `yaml:"condition" mapstructure:"condition"`
}

// EmbedderParameters configures the embedding provider used by rag/memories.
type EmbedderParameters struct {
	Model string `yaml:"model" mapstructure:"model"`
}

// RAGParameters configures chunking and the vector-store backend.
type RAGParameters struct {
	ChunkSize    int              `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int              `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	ChunkUnit    string           `yaml:"chunk_unit" mapstructure:"chunk_unit"` // "characters" | "tokens"
	VectorStore  VectorStoreParam `yaml:"vector_store" mapstructure:"vector_store"`
}

// VectorStoreParam selects and configures the vector backend.
type VectorStoreParam struct {
	Type       string `yaml:"type" mapstructure:"type"` // "chromem" | "qdrant" | "pinecone"
	Collection string `yaml:"collection" mapstructure:"collection"`
	Host       string `yaml:"host,omitempty" mapstructure:"host"`
	Port       int    `yaml:"port,omitempty" mapstructure:"port"`
	APIKey     string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Namespace  string `yaml:"namespace,omitempty" mapstructure:"namespace"`
}

// EventSinkParameters selects and configures where role-activation events
// (§6, §10) are delivered. An empty Type keeps the default no-op sink.
type EventSinkParameters struct {
	Type string `yaml:"type" mapstructure:"type"` // "" | "sql" | "webhook" | "websocket"

	// SQL configuration (Type == "sql").
	SQLDialect string `yaml:"sql_dialect,omitempty" mapstructure:"sql_dialect"` // "postgres" | "sqlite3"
	SQLDSN     string `yaml:"sql_dsn,omitempty" mapstructure:"sql_dsn"`

	// Webhook configuration (Type == "webhook").
	WebhookURL string `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`
}

// Parameters carries provider/model selection and runtime knobs.
type Parameters struct {
	LLMModel             string              `yaml:"llm_model" mapstructure:"llm_model"`
	LLMProvider           string              `yaml:"llm_provider" mapstructure:"llm_provider"`
	ExportConversation   bool                `yaml:"export_conversation" mapstructure:"export_conversation"`
	Embedder             EmbedderParameters  `yaml:"embedder" mapstructure:"embedder"`
	RAG                  RAGParameters       `yaml:"rag" mapstructure:"rag"`
	RateLimit            RateLimitParameters `yaml:"rate_limit" mapstructure:"rate_limit"`
	EventSink            EventSinkParameters `yaml:"event_sink" mapstructure:"event_sink"`
	TurnLimit            int                 `yaml:"turn_limit" mapstructure:"turn_limit"`
	RevisionLimit        int                 `yaml:"revision_limit" mapstructure:"revision_limit"`
	SummarizeOnRevision  bool                `yaml:"summarize_on_revision" mapstructure:"summarize_on_revision"`
	SummarizeThreshold   int                 `yaml:"summarize_threshold" mapstructure:"summarize_threshold"`
}

// RateLimitRule bounds one (limit type, time window) pair.
type RateLimitRule struct {
	Type   string `yaml:"type" mapstructure:"type"`     // "token" | "count"
	Window string `yaml:"window" mapstructure:"window"` // "minute" | "hour" | "day" | "week" | "month"
	Limit  int64  `yaml:"limit" mapstructure:"limit"`
}

// RateLimitParameters throttles outbound LLM/embedder calls per task run.
// Disabled unless Enabled is set (the default is off); Validate rejects an
// enabled block that declares no limits.
type RateLimitParameters struct {
	Enabled bool            `yaml:"enabled" mapstructure:"enabled"`
	Limits  []RateLimitRule `yaml:"limits,omitempty" mapstructure:"limits"`
}

// Output declares where and how the final artifact is written.
type Output struct {
	Format string `yaml:"format" mapstructure:"format"` // "markdown" | "text"
	File   string `yaml:"file" mapstructure:"file"`
}

// Task is the fully decoded, validated task definition.
type Task struct {
	Name        string         `yaml:"name" mapstructure:"name"`
	Description string         `yaml:"description" mapstructure:"description"`
	Version     string         `yaml:"version" mapstructure:"version"`
	Context     []ContextEntry `yaml:"context" mapstructure:"context"`
	Agents      []AgentEntry   `yaml:"agents" mapstructure:"agents"`
	Modules     []ModuleEntry  `yaml:"modules" mapstructure:"modules"`
	Workflow    []WorkflowStep `yaml:"workflow" mapstructure:"workflow"`
	Parameters  Parameters     `yaml:"parameters" mapstructure:"parameters"`
	Output      Output         `yaml:"output" mapstructure:"output"`
}

// SetDefaults fills in the runtime knobs the spec declares as defaulted.
func (t *Task) SetDefaults() {
	if t.Parameters.TurnLimit == 0 {
		t.Parameters.TurnLimit = 20
	}
	if t.Parameters.RevisionLimit == 0 {
		t.Parameters.RevisionLimit = 5
	}
	if t.Parameters.RAG.ChunkSize == 0 {
		t.Parameters.RAG.ChunkSize = 1000
	}
	if t.Parameters.RAG.ChunkOverlap == 0 {
		t.Parameters.RAG.ChunkOverlap = 100
	}
	if t.Parameters.RAG.ChunkUnit == "" {
		t.Parameters.RAG.ChunkUnit = "characters"
	}
	if t.Parameters.RAG.VectorStore.Type == "" {
		t.Parameters.RAG.VectorStore.Type = "chromem"
	}
	if t.Output.Format == "" {
		t.Output.Format = "markdown"
	}
	if t.Parameters.SummarizeThreshold == 0 {
		t.Parameters.SummarizeThreshold = 40
	}
	if t.Parameters.EventSink.Type == "sql" && t.Parameters.EventSink.SQLDialect == "" {
		t.Parameters.EventSink.SQLDialect = "sqlite3"
	}
}

// Validate checks structural invariants that must hold before the workflow
// engine runs: a name, at least one agent and one workflow step, workflow
// steps that only name declared roles, an unambiguous edge set, named
// module entries, known context kinds, and well-formed event_sink and
// rate_limit parameters. Module names are not checked against the set of
// known modules here. It does not validate LLM/embedder reachability (those fail at
// first use, per the spec's TransportError handling).
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("configuration: task name is required")
	}
	if len(t.Agents) == 0 {
		return fmt.Errorf("configuration: at least one agent entry is required")
	}
	if len(t.Workflow) == 0 {
		return fmt.Errorf("configuration: at least one workflow step is required")
	}

	seen := map[AgentRole]bool{}
	for _, a := range t.Agents {
		seen[a.Role] = true
	}

	type edgeKey struct {
		from AgentRole
		cond Outcome
	}
	edges := map[edgeKey]int{}
	for _, step := range t.Workflow {
		if step.To != Completed && !seen[step.To] {
			return fmt.Errorf("configuration: workflow step references unknown agent role %q", step.To)
		}
		if !seen[step.From] {
			return fmt.Errorf("configuration: workflow step references unknown agent role %q", step.From)
		}
		k := edgeKey{step.From, step.Condition}
		edges[k]++
		if edges[k] > 1 {
			return fmt.Errorf("configuration: ambiguous workflow: multiple edges for (%s, %s)", step.From, step.Condition)
		}
	}

	for _, m := range t.Modules {
		if m.Name == "" {
			return fmt.Errorf("configuration: module entry missing name")
		}
	}

	for _, ctx := range t.Context {
		if ctx.Alias == "" {
			return fmt.Errorf("configuration: context entry missing alias")
		}
		switch ctx.Kind {
		case ContextText, ContextFile, ContextUserInput:
		default:
			return fmt.Errorf("configuration: context alias %q has unknown kind %q", ctx.Alias, ctx.Kind)
		}
	}

	switch t.Parameters.EventSink.Type {
	case "", "sql", "webhook", "websocket":
	default:
		return fmt.Errorf("configuration: event_sink has unknown type %q", t.Parameters.EventSink.Type)
	}
	if t.Parameters.EventSink.Type == "sql" && t.Parameters.EventSink.SQLDSN == "" {
		return fmt.Errorf("configuration: event_sink type %q requires sql_dsn", "sql")
	}
	if t.Parameters.EventSink.Type == "webhook" && t.Parameters.EventSink.WebhookURL == "" {
		return fmt.Errorf("configuration: event_sink type %q requires webhook_url", "webhook")
	}

	if t.Parameters.RateLimit.Enabled {
		if len(t.Parameters.RateLimit.Limits) == 0 {
			return fmt.Errorf("configuration: rate_limit is enabled but declares no limits")
		}
		for _, l := range t.Parameters.RateLimit.Limits {
			if l.Type != "token" && l.Type != "count" {
				return fmt.Errorf("configuration: rate_limit rule has unknown type %q", l.Type)
			}
			switch l.Window {
			case "minute", "hour", "day", "week", "month":
			default:
				return fmt.Errorf("configuration: rate_limit rule has unknown window %q", l.Window)
			}
			if l.Limit <= 0 {
				return fmt.Errorf("configuration: rate_limit rule must have a positive limit")
			}
		}
	}

	return nil
}
