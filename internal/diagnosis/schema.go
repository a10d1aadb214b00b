package diagnosis

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// resultSchema checks field types only. Every field may be absent so that a
// sparse response still renders; present fields must have the right shape.
const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "red_flags": {"type": ["array", "null"], "items": {"type": "string"}},
    "conditions": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "confidence": {"type": "number"},
          "description": {"type": "string"},
          "treatments": {"type": ["array", "null"], "items": {"type": "string"}},
          "severity": {"type": ["string", "null"]},
          "symptoms": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "natlas_analysis": {"type": ["string", "null"]},
    "recommendations": {"type": ["array", "null"], "items": {"type": "string"}},
    "disclaimer": {"type": ["string", "null"]},
    "detected_language": {"type": ["string", "null"]},
    "processing_time_ms": {"type": ["integer", "null"], "minimum": 0},
    "response_id": {"type": ["string", "null"]}
  }
}`

// Validator checks raw diagnosis bodies against the result schema
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the result schema
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile result schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns an error wrapping ErrMalformedResult when body does not
// match the schema.
func (v *Validator) Validate(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedResult, strings.Join(msgs, "; "))
	}

	return nil
}
