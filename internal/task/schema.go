package task

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tasks.schema.json
var schemaJSON string

const schemaURL = "tasks.schema.json"

// SchemaJSON returns the embedded JSON Schema for the persisted task list.
func SchemaJSON() string {
	return schemaJSON
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

// Validate checks a raw persisted value against the embedded schema and
// reports duplicate ids and duplicate texts as warnings.
func Validate(raw []byte) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("invalid JSON: %w", err),
		})
		return result
	}

	schema, err := compileSchema()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("schema unavailable: %v", err))
	} else if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}

	if items, ok := doc.([]any); ok {
		warnDuplicates(result, items)
	}
	return result
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

func warnDuplicates(result *ValidationResult, items []any) {
	ids := make(map[string]int)
	texts := make(map[string]int)
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := obj["id"].(string); ok && id != "" {
			if first, dup := ids[id]; dup {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("[%d].id: duplicate of [%d], will be dropped on load", i, first))
			} else {
				ids[id] = i
			}
		}
		if text, ok := obj["text"].(string); ok {
			if first, dup := texts[text]; dup {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("[%d].text: same text as [%d]", i, first))
			} else {
				texts[text] = i
			}
		}
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/0/deadline" into "[0].deadline".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
