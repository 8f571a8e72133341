package outputschema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
		},
		"required": []any{"title"},
	}
}

func TestValidateNilSchemaAlwaysPasses(t *testing.T) {
	require.NoError(t, Validate(nil, "not even json"))
}

func TestValidateNonJSONTextAlwaysPasses(t *testing.T) {
	require.NoError(t, Validate(sampleSchema(), "plain prose, not json at all"))
}

func TestValidateMatchingJSONPasses(t *testing.T) {
	require.NoError(t, Validate(sampleSchema(), `{"title": "a report"}`))
}

func TestValidateMissingRequiredFieldFails(t *testing.T) {
	err := Validate(sampleSchema(), `{"subtitle": "no title here"}`)
	require.Error(t, err)
}

func TestValidateWrongTypeFails(t *testing.T) {
	err := Validate(sampleSchema(), `{"title": 5}`)
	require.Error(t, err)
}
