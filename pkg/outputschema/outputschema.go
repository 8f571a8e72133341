// Package outputschema validates a formatter's final output text against
// the JSON-schema descriptor an agent entry may declare (§4.11). Grounded
// on the haasonsaas-nexus sibling's pkg/pluginsdk.ValidateConfig, which
// solves the identical compile-schema/marshal-payload/validate shape for
// plugin config.
package outputschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks text against schema. A nil/empty schema means the role
// declared none — always passes. Text that doesn't parse as JSON also
// passes (§4.11: only JSON-parseable output is checked); a genuine
// schema mismatch on JSON output returns a non-nil error whose message
// becomes the revision feedback text.
func Validate(schema map[string]any, text string) error {
	if len(schema) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil
	}

	compiled, err := compile(schema)
	if err != nil {
		return fmt.Errorf("output schema: %w", err)
	}

	if err := compiled.Validate(decoded); err != nil {
		return fmt.Errorf("output does not satisfy the declared schema: %w", err)
	}
	return nil
}

// compile builds a fresh Compiler per call so repeated validation against
// differently-named or differently-shaped schemas never collides with a
// shared global resource cache.
func compile(schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("output.schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return compiler.Compile("output.schema.json")
}
