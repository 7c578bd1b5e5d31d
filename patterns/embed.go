// Package patterns provides embedded default recognizer definitions.
// YAML files in this directory describe the regex recognizers used for
// PII span detection and for form-field name extraction.
package patterns

import _ "embed"

//go:embed pii_default.yaml
var piiDefaultYAML []byte

//go:embed form_fields.yaml
var formFieldsYAML []byte

// PIIDefaultYAML returns the embedded default PII recognizer definitions.
func PIIDefaultYAML() []byte { return piiDefaultYAML }

// FormFieldsYAML returns the embedded form-field name extractor definitions.
func FormFieldsYAML() []byte { return formFieldsYAML }
