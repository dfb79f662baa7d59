package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func batchSchema() map[string]any {
	recommendation := map[string]any{
		"type":     "object",
		"required": []string{"intervention", "estimated_cost"},
		"properties": map[string]any{
			"intervention":   map[string]any{"type": "string", "minLength": 1},
			"irc_code":       map[string]any{"type": "string"},
			"clause":         map[string]any{"type": "string"},
			"cost_level":     map[string]any{"type": "string"},
			"estimated_cost": map[string]any{"type": "integer", "minimum": 0},
			"matched_by":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
	section := map[string]any{
		"type":     "object",
		"required": []string{"issue", "recommendations", "total_cost"},
		"properties": map[string]any{
			"issue":           map[string]any{"type": "string", "minLength": 1},
			"issues":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"recommendations": map[string]any{"type": "array", "minItems": 1, "items": recommendation},
			"total_cost":      map[string]any{"type": "integer", "minimum": 0},
		},
	}
	return map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []string{"id", "source", "sections", "grand_total"},
		"properties": map[string]any{
			"id":          map[string]any{"type": "string"},
			"source":      map[string]any{"type": "string"},
			"sections":    map[string]any{"type": "array", "items": section},
			"grand_total": map[string]any{"type": "integer", "minimum": 0},
			"summary":     map[string]any{"type": "string"},
			"created_at":  map[string]any{"type": "string"},
		},
	}
}

func reportSchema() map[string]any {
	return map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []string{"id", "source", "issues", "matches", "no_matches", "summary"},
		"properties": map[string]any{
			"id":                map[string]any{"type": "string"},
			"source":            map[string]any{"type": "string", "minLength": 1},
			"issues":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"matches":           map[string]any{"type": "array", "items": map[string]any{"type": "object", "required": []string{"title"}}},
			"matched_by":        map[string]any{"type": "array", "items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}}},
			"no_matches":        map[string]any{"type": "boolean"},
			"summary":           map[string]any{"type": "string"},
			"summary_available": map[string]any{"type": "boolean"},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
