package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Epistemic-Technology/emolit/models"
)

const summarySchemaURL = "emolit://schemas/summary.json"

var (
	compileOnce     sync.Once
	compiledSummary *validator.Schema
	compileErr      error
)

// SummarySchema returns the JSON schema of the six summary fields, derived
// from models.Summary.
func SummarySchema() (map[string]any, error) {
	schema, err := jsonschema.For[models.Summary](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary schema: %w", err)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode summary schema: %w", err)
	}
	out["additionalProperties"] = false
	return out, nil
}

func compileSummarySchema() (*validator.Schema, error) {
	compileOnce.Do(func() {
		schema, err := SummarySchema()
		if err != nil {
			compileErr = err
			return
		}
		raw, err := json.Marshal(schema)
		if err != nil {
			compileErr = err
			return
		}
		c := validator.NewCompiler()
		if err := c.AddResource(summarySchemaURL, bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("failed to add summary schema: %w", err)
			return
		}
		compiledSummary, compileErr = c.Compile(summarySchemaURL)
	})
	return compiledSummary, compileErr
}

// ValidateSummary checks a completion against the six-field schema. A
// mismatch is informational; the completion is still used as is.
func ValidateSummary(completion []byte) error {
	schema, err := compileSummarySchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(completion, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return schema.Validate(v)
}
