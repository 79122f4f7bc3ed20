package breakdown

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const chunkSchemaJSON = `{
  "type": "object",
  "required": ["weeklyGoals"],
  "properties": {
    "weeklyGoals": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "tasks"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": ["string", "null"]},
          "weekNumber": {"type": "number"},
          "tasks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title"],
              "properties": {
                "title": {"type": "string"},
                "description": {"type": ["string", "null"]},
                "day": {"type": "number"},
                "priority": {"type": ["string", "null"]},
                "estimatedHours": {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

var chunkSchema = mustSchema(chunkSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("breakdown: bad schema: %v", err))
	}
	return s
}

// validateChunk checks a decoded chunk document against the chunk schema.
func validateChunk(doc any) error {
	result, err := chunkSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}
