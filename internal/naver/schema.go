package naver

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const geocodeSchema = `{
  "type": "object",
  "properties": {
    "status": {"type": "string"},
    "addresses": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "roadAddress":    {"type": "string"},
          "jibunAddress":   {"type": "string"},
          "englishAddress": {"type": "string"},
          "x": {"type": ["string", "number"]},
          "y": {"type": ["string", "number"]}
        }
      }
    }
  }
}`

const localSearchSchema = `{
  "type": "object",
  "properties": {
    "total": {"type": "integer"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title":       {"type": "string"},
          "category":    {"type": "string"},
          "telephone":   {"type": "string"},
          "address":     {"type": "string"},
          "roadAddress": {"type": "string"},
          "mapx": {"type": ["string", "number"]},
          "mapy": {"type": ["string", "number"]}
        }
      }
    }
  }
}`

var (
	geocodeValidator     = jsonschema.MustCompileString("naver-geocode.json", geocodeSchema)
	localSearchValidator = jsonschema.MustCompileString("naver-local.json", localSearchSchema)
)

// SchemaError marks a response body that does not have the documented shape.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return "unexpected response shape: " + e.Err.Error() }
func (e *SchemaError) Unwrap() error { return e.Err }

func validate(schema *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &SchemaError{Err: fmt.Errorf("unmarshal data: %w", err)}
	}
	if err := schema.Validate(v); err != nil {
		return &SchemaError{Err: err}
	}
	return nil
}
