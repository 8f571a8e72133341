package taskmanager

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taskforge/taskforge/pkg/config"
)

// resolveAliases turns the task's declared context entries into the
// alias->text map the role engine substitutes into prompt templates.
// Text contexts are stored verbatim, file contexts are read from disk at
// resolution time, and user_input contexts are read once from prompt
// (one line, per the teacher's pkg/cli/commands.go interactive-input
// pattern), then reused for every role activation that references them.
func resolveAliases(contexts []config.ContextEntry, prompt io.Reader, out io.Writer) (map[string]string, error) {
	aliases := make(map[string]string, len(contexts))
	reader := bufio.NewReader(prompt)

	for _, ctx := range contexts {
		switch ctx.Kind {
		case config.ContextText:
			aliases[ctx.Alias] = ctx.Content

		case config.ContextFile:
			data, err := os.ReadFile(ctx.Content)
			if err != nil {
				return nil, fmt.Errorf("context %q: read file %q: %w", ctx.Alias, ctx.Content, err)
			}
			aliases[ctx.Alias] = string(data)

		case config.ContextUserInput:
			fmt.Fprintf(out, "%s: ", ctx.Content)
			line, err := reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("context %q: read user input: %w", ctx.Alias, err)
			}
			aliases[ctx.Alias] = strings.TrimRight(line, "\r\n")

		default:
			return nil, fmt.Errorf("context %q: unknown kind %q", ctx.Alias, ctx.Kind)
		}
	}

	return aliases, nil
}
