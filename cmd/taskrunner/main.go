// Command taskrunner runs one task definition to completion: load the
// task YAML, run the proposer/reviewer/validator/formatter workflow, and
// write the resulting artifact.
//
// Usage:
//
//	taskrunner --task-config task.yaml
//	taskrunner --task-config task.yaml --export-conversation
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/invopop/jsonschema"

	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/embedder"
	"github.com/taskforge/taskforge/pkg/event/wssink"
	"github.com/taskforge/taskforge/pkg/logger"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/taskerr"
	"github.com/taskforge/taskforge/pkg/taskmanager"
)

// CLI is a single subcommand-free entry: no kong `cmd:""` verbs, just
// flags, per the runtime's CLI contract (§6).
type CLI struct {
	TaskConfig         string `name:"task-config" type:"path" help:"Path to the task definition YAML."`
	Resume             string `name:"resume" help:"Task id to resume event correlation under, if supported by the configured sink."`
	ExportConversation bool   `name:"export-conversation" help:"Write the full conversation transcript alongside the output artifact."`
	PrintSchema        bool   `name:"print-schema" help:"Print the JSON Schema for a task definition and exit, without running anything."`

	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `name:"log-file" help:"Log file path (empty = stderr)."`
	LogFormat string `name:"log-format" help:"Log format (simple or verbose; colored automatically on a terminal)." default:"simple"`

	TracingEnabled bool   `name:"tracing-enabled" help:"Export OpenTelemetry traces for each role activation."`
	TracingEndpoint string `name:"tracing-endpoint" help:"OTLP gRPC collector endpoint." default:"localhost:4317"`
	MetricsEnabled bool   `name:"metrics-enabled" help:"Serve Prometheus metrics while the task runs."`
	MetricsAddr    string `name:"metrics-addr" help:"Address to serve the Prometheus /metrics endpoint on." default:":9090"`

	EventSinkAddr string `name:"event-sink-addr" help:"Address to serve the websocket event feed on, when parameters.event_sink.type is \"websocket\"." default:":9091"`
}

func main() {
	var cli CLI
	kong.Parse(&cli, kong.Name("taskrunner"), kong.Description("Run a taskforge task definition to completion."))

	if cli.PrintSchema {
		os.Exit(printSchema())
	}
	if cli.TaskConfig == "" {
		fmt.Fprintln(os.Stderr, "taskrunner: --task-config is required")
		os.Exit(2)
	}

	os.Exit(run(cli))
}

// printSchema reflects config.Task into a JSON Schema document, the way a
// downstream editor or config-builder UI would validate a task file
// against before submitting it to taskrunner.
func printSchema() int {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:           true,
	}
	schema := reflector.Reflect(&config.Task{})
	schema.ID = "https://taskforge.dev/schemas/task.json"
	schema.Title = "Taskforge Task Schema"
	schema.Description = "Schema for a taskforge task definition."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(schema); err != nil {
		fmt.Fprintf(os.Stderr, "taskrunner: encode schema: %v\n", err)
		return 1
	}
	return 0
}

func run(cli CLI) int {
	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskrunner: invalid log level: %v\n", err)
		return 2
	}

	output := os.Stderr
	if cli.LogFile != "" {
		file, cleanup, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "taskrunner: open log file: %v\n", err)
			return 2
		}
		defer cleanup()
		output = file
	}
	logger.Init(level, output, cli.LogFormat)
	log := logger.GetLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	task, _, err := config.LoadTaskFile(ctx, cli.TaskConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskrunner: load task config: %v\n", err)
		return 2
	}
	if cli.ExportConversation {
		task.Parameters.ExportConversation = true
	}

	llmClient := newOpenAIChatClient(os.Getenv("LLM_BASE_URL"), apiKeyFromEnv(task.Parameters.LLMProvider))

	var emb embedder.Embedder
	if task.Parameters.Embedder.Model != "" {
		emb = newOpenAIEmbedderClient(os.Getenv("EMBEDDER_BASE_URL"), apiKeyFromEnv(task.Parameters.LLMProvider))
	}

	obsMgr, err := observability.NewManager(ctx, &observability.Config{
		Tracing: observability.TracingConfig{
			Enabled:  cli.TracingEnabled,
			Endpoint: cli.TracingEndpoint,
		},
		Metrics: observability.MetricsConfig{
			Enabled: cli.MetricsEnabled,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskrunner: init observability: %v\n", err)
		return 2
	}
	defer func() {
		if err := obsMgr.Shutdown(context.Background()); err != nil {
			log.Error("observability shutdown failed", "error", err)
		}
	}()

	if cli.MetricsEnabled {
		metricsServer := &http.Server{Addr: cli.MetricsAddr, Handler: obsMgr.MetricsHandler()}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer metricsServer.Close()
	}

	wsHandler := wssink.New()
	sink, sinkCloser, err := newEventSink(task.Parameters.EventSink, wsHandler)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskrunner: %v\n", err)
		return 2
	}
	if sinkCloser != nil {
		defer sinkCloser.Close()
	}
	if task.Parameters.EventSink.Type == "websocket" {
		eventServer := &http.Server{Addr: cli.EventSinkAddr, Handler: http.HandlerFunc(wsHandler.Handler)}
		go func() {
			if err := eventServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("event sink server failed", "error", err)
			}
		}()
		defer eventServer.Close()
	}

	mgr := taskmanager.New(task, llmClient, emb, sink)
	mgr.Tracer = obsMgr.Tracer()

	log.Info("starting task run", "task", task.Name, "resume", cli.Resume)

	result, err := mgr.Run(ctx)
	if err != nil {
		log.Error("task run failed", "error", err)
		fmt.Fprintf(os.Stderr, "taskrunner: %v\n", err)
		return exitCodeFor(err)
	}

	log.Info("task run completed", "task", task.Name, "output_bytes", len(result.Output))
	return 0
}

// exitCodeFor maps a fatal *taskerr.Error to a distinguishable non-zero
// exit code; any other error (configuration, I/O) exits 1.
func exitCodeFor(err error) int {
	var terr *taskerr.Error
	if asTaskErr(err, &terr) {
		switch terr.Kind {
		case taskerr.WorkflowStuck:
			return 3
		case taskerr.TurnLimitExceeded:
			return 4
		case taskerr.RevisionLimitExceeded:
			return 5
		case taskerr.Cancelled:
			return 6
		}
	}
	return 1
}

func asTaskErr(err error, out **taskerr.Error) bool {
	terr, ok := err.(*taskerr.Error)
	if ok {
		*out = terr
	}
	return ok
}
