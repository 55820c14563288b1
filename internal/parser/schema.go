package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// extractionSchema describes the JSON object every provider must return.
// bill_items is optional here so that a missing list surfaces as a
// malformed page with a precise message instead of a generic schema error.
var extractionSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"required": []string{
		"pagewise_line_items",
	},
	"properties": map[string]any{
		"pagewise_line_items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"page_type"},
				"properties": map[string]any{
					"page_no":   map[string]any{"type": []string{"string", "integer"}},
					"page_type": map[string]any{"type": "string"},
					"bill_items": map[string]any{
						"type": []string{"array", "null"},
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"item_name":     map[string]any{"type": []string{"string", "null"}},
								"item_amount":   map[string]any{"type": []string{"number", "null"}},
								"item_rate":     map[string]any{"type": []string{"number", "null"}},
								"item_quantity": map[string]any{"type": []string{"number", "null"}},
							},
						},
					},
				},
			},
		},
		"printed_total": map[string]any{"type": []string{"number", "null"}},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(extractionSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("extraction.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ValidateExtractionJSON checks raw model output against the extraction schema.
func ValidateExtractionJSON(data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
