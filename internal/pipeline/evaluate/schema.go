// internal/pipeline/evaluate/schema.go
package evaluate

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// verdictSchema constrains the model's JSON reply: a "criteria" object
// whose entries carry an integer score in [0,10]. Criteria absent from
// the reply are tolerated and scored as zero by the scorer.
const verdictSchema = `{
  "type": "object",
  "required": ["criteria"],
  "properties": {
    "criteria": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["score"],
        "properties": {
          "score": {"type": "integer", "minimum": 0, "maximum": 10},
          "explanation": {"type": "string"}
        }
      }
    },
    "summary": {"type": "string"}
  }
}`

var compiledVerdictSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(verdictSchema))
	if err != nil {
		panic(fmt.Sprintf("verdict schema does not compile: %v", err))
	}
	return s
}()

// validateVerdict checks the raw JSON document against the verdict schema.
func validateVerdict(raw string) error {
	result, err := compiledVerdictSchema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("response does not match expected shape: %s", strings.Join(msgs, "; "))
	}
	return nil
}
