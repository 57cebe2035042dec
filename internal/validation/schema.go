package validation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nycb2b/site/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	ErrSchemaUnknown    = errors.New("validation: no schema for kind")
	ErrSchemaValidation = errors.New("validation: payload does not match schema")
)

// ValidationIssue is one failed constraint.
type ValidationIssue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// PayloadValidationError lists every issue found in a submission.
type PayloadValidationError struct {
	Kind   domain.Kind
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from err.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) {
		return payloadErr.Issues
	}
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) {
		return collectIssues(schemaErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Validator checks public submission payloads against the embedded schemas.
type Validator struct {
	once    sync.Once
	err     error
	schemas map[domain.Kind]*jsonschema.Schema
}

// NewValidator returns a validator; schemas compile on first use.
func NewValidator() *Validator {
	return &Validator{}
}

var defaultValidator = NewValidator()

// ValidatePayload validates payload with the shared validator.
func ValidatePayload(kind domain.Kind, payload map[string]any) error {
	return defaultValidator.Validate(kind, payload)
}

// Validate checks payload against the schema for kind.
func (v *Validator) Validate(kind domain.Kind, payload map[string]any) error {
	v.once.Do(v.compile)
	if v.err != nil {
		return v.err
	}
	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSchemaUnknown, kind)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := schema.Validate(payload); err != nil {
		return &PayloadValidationError{Kind: kind, Issues: Issues(err), Cause: err}
	}
	return nil
}

func (v *Validator) compile() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	v.schemas = make(map[domain.Kind]*jsonschema.Schema, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		name := "schemas/" + string(kind) + ".json"
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			v.err = fmt.Errorf("validation: read %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("validation: add %s: %w", name, err)
			return
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			v.err = fmt.Errorf("validation: compile %s: %w", name, err)
			return
		}
		v.schemas[kind] = schema
	}
}

func collectIssues(err *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
