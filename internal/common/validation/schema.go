// Package validation checks feed payloads against a JSON schema. Results are
// advisory: the reconciler is lenient and coerces bad fields rather than
// rejecting items, so schema violations are logged, never fatal.
package validation

import (
	"github.com/xeipuuv/gojsonschema"
)

// notificationFeedSchema describes the shape of the list-notifications
// response. createdAt is deliberately a plain string: unparseable timestamps
// are coerced downstream.
const notificationFeedSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "message", "read"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "type": {"type": "string"},
      "title": {"type": "string"},
      "message": {"type": "string"},
      "read": {"type": "boolean"},
      "createdAt": {"type": "string"}
    }
  }
}`

// FeedValidator validates raw list-notifications payloads.
type FeedValidator struct {
	schema gojsonschema.JSONLoader
}

func NewFeedValidator() *FeedValidator {
	return &FeedValidator{
		schema: gojsonschema.NewStringLoader(notificationFeedSchema),
	}
}

// Check returns a human-readable problem per schema violation. A non-empty
// result does not stop processing; an error is returned only when the
// payload is not valid JSON at all.
func (v *FeedValidator) Check(raw []byte) ([]string, error) {
	result, err := gojsonschema.Validate(v.schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}
