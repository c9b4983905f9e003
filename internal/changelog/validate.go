package changelog

import (
	"fmt"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tasklog/tasklog/schema"
)

// ValidationResult collects errors and warnings from a document check.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool
}

// Validate checks the document against the embedded JSON Schema and warns
// about entries the schema cannot judge: a current_version with no entry and
// version dates that do not parse.
func (s *Store) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	sch, err := schema.Compile("changelog.schema.json", schema.Changelog)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("schema unavailable, using minimal checks: %v", err))
	} else {
		result.UsedSchema = true
		if err := schema.Validate(sch, s.doc); err != nil {
			result.Valid = false
			flattenSchemaErrors(result, err)
		}
	}

	if _, ok := s.doc.Versions[s.doc.CurrentVersion]; !ok {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("current_version %q has no version entry", s.doc.CurrentVersion))
	}
	for version, entry := range s.doc.Versions {
		if _, err := time.Parse(DateLayout, entry.Date); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("versions.%s: date %q does not parse", version, entry.Date))
		}
	}
	return result
}

func flattenSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e == nil {
			return
		}
		if len(e.Causes) == 0 {
			result.Errors = append(result.Errors,
				fmt.Errorf("%s: %s", e.InstanceLocation, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
}
