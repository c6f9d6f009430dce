// Package schemas provides JSON Schema validation for imported result-set documents.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed result_set.json
var resultSetSchema []byte

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Errors, "; "))
}

// ValidateResultSet checks a JSON result-set document against the embedded
// schema. A malformed document returns a *ValidationError listing every
// violated field; a nil error means the document is structurally valid.
func ValidateResultSet(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(resultSetSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to run schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, resultError := range result.Errors() {
		verr.Errors = append(verr.Errors, fmt.Sprintf("%s: %s", resultError.Field(), resultError.Description()))
	}
	return verr
}
