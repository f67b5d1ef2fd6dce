package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigJSONSchema describes the TOML config file once decoded into generic values.
func ConfigJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	boolean := map[string]any{"type": "boolean"}
	section := func(props map[string]any) map[string]any {
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"scan": section(map[string]any{
				"workers":   map[string]any{"type": "integer", "minimum": 1, "maximum": 64},
				"normalize": boolean,
				"timeout":   map[string]any{"type": "string", "pattern": `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`},
			}),
			"extract": section(map[string]any{
				"pdftotext":      str,
				"pdftoppm":       str,
				"tesseract":      str,
				"tesseract_lang": map[string]any{"type": "string", "minLength": 1},
				"tessdata_dir":   str,
				"dpi":            map[string]any{"type": "integer", "minimum": 72, "maximum": 1200},
				"max_pages":      map[string]any{"type": "integer", "minimum": 0},
				"ocr_fallback":   boolean,
			}),
			"output": section(map[string]any{
				"metrics_file": str,
				"skip_hidden":  boolean,
				"dedup":        boolean,
			}),
		},
	}
}

// ValidateConfigDocument validates a decoded config document against ConfigJSONSchema.
func ValidateConfigDocument(doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return ValidateJSONAgainstSchema(ConfigJSONSchema(), data)
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
