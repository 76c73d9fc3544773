package lint

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed report.schema.json
var reportSchema string

// ValidateReportJSON checks a serialized report against the embedded JSON
// schema. The schema is the contract with downstream tooling that consumes
// --json output.
func ValidateReportJSON(payload string) error {
	schemaLoader := gojsonschema.NewStringLoader(reportSchema)
	documentLoader := gojsonschema.NewStringLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		details = append(details, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return fmt.Errorf("report does not match schema: %s", strings.Join(details, "; "))
}
