// Package modrequest parses MODULE_REQUEST directives embedded in
// free-form assistant text and renders module results back into the
// conversation.
//
// The directive grammar is a small embedded DSL with no corresponding
// third-party grammar/lexer dependency anywhere in the retrieval pack (the
// closest analogues — the teacher's tool-call argument decoding in
// pkg/tool, and haasonsaas-nexus's JSON-Schema argument validation — both
// operate on already-structured JSON tool calls, not on a line-oriented
// text directive a model emits inline). The tokenizer below is therefore
// hand-rolled against the standard library; see DESIGN.md for the full
// justification.
package modrequest

import (
	"fmt"
	"sort"
	"strings"
)

// Request is one parsed module-request invocation.
type Request struct {
	Module string
	Action string
	// Args holds key=value pairs. Positional (bare) arguments are stored
	// under numeric string keys "0", "1", ... in the order they appeared.
	Args map[string]string
	// Raw is the original directive line, used for cache-key rendering and
	// diagnostics.
	Raw string
}

// ParseError describes a malformed directive. It is not fatal: the parser
// reports it as a result to be injected back into the conversation so the
// model can retry.
type ParseError struct {
	Line string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ParseError: %s (line: %q)", e.Msg, e.Line)
}

const directivePrefix = "MODULE_REQUEST:"

// Parse scans text line by line for MODULE_REQUEST directives. It returns
// the ordered list of well-formed requests, any parse errors encountered
// (each tied to the offending line), and the residual text with all
// directive lines (well-formed or not) removed.
//
// Directives inside fenced code blocks are still recognized: fence markers
// are not stripped by this parser, only lines matching the directive
// prefix are treated specially, so a ```...MODULE_REQUEST: fs list /t...```
// block still yields a request.
func Parse(text string) (requests []Request, errs []*ParseError, residual string) {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(stripFence(line))
		if !strings.HasPrefix(trimmed, directivePrefix) {
			kept = append(kept, line)
			continue
		}

		rest := strings.TrimSpace(trimmed[len(directivePrefix):])
		req, err := parseDirective(rest)
		if err != nil {
			errs = append(errs, &ParseError{Line: line, Msg: err.Error()})
			continue
		}
		req.Raw = trimmed
		requests = append(requests, *req)
	}

	residual = strings.Join(kept, "\n")
	return requests, errs, residual
}

// stripFence removes a leading/trailing markdown code-fence marker so a
// directive wrapped in ``` is still recognized on its own line.
func stripFence(line string) string {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "```") || strings.HasSuffix(t, "```") {
		return strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	}
	return line
}

func parseDirective(rest string) (*Request, error) {
	tokens, err := tokenize(rest)
	if err != nil {
		return nil, err
	}
	if len(tokens) < 2 {
		return nil, fmt.Errorf("expected at least a module name and an action")
	}

	req := &Request{
		Module: tokens[0],
		Action: tokens[1],
		Args:   map[string]string{},
	}

	positional := 0
	for _, tok := range tokens[2:] {
		if key, val, ok := strings.Cut(tok, "="); ok && isIdent(key) {
			req.Args[key] = val
			continue
		}
		req.Args[fmt.Sprintf("%d", positional)] = tok
		positional++
	}

	return req, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// tokenize splits on whitespace, honoring double-quoted substrings (which
// preserve internal whitespace) and backslash escapes of the next
// character, per §4.3 of the directive grammar.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	haveToken := false
	escaped := false

	flush := func() {
		if haveToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			haveToken = false
		}
	}

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			haveToken = true
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
			haveToken = true
		case inQuotes:
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			haveToken = true
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("unterminated quoted string")
	}
	if escaped {
		return nil, fmt.Errorf("dangling escape character")
	}
	flush()

	return tokens, nil
}

// Canonicalize renders a request's module/action/args into a stable string
// for use as a cache key component: keys sorted, whitespace normalized.
func Canonicalize(module, action string, args map[string]string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s", strings.TrimSpace(module), strings.TrimSpace(action))
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, normalizeWhitespace(args[k]))
	}
	return b.String()
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Render formats a module result for re-injection into the conversation,
// per §4.5: "MODULE_RESULT: <module> <action>\n<result-body>".
func Render(module, action, body string) string {
	return fmt.Sprintf("MODULE_RESULT: %s %s\n%s", module, action, body)
}

// RenderError formats a module error for re-injection, per §7's
// "MODULE_ERROR: <kind> <detail>" taxonomy.
func RenderError(kind, detail string) string {
	return fmt.Sprintf("MODULE_ERROR: %s %s", kind, detail)
}
