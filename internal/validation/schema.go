package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue is one failed keyword, located by JSON pointer ("#/hero_section/title").
type Issue struct {
	Location string
	Message  string
}

func (i Issue) String() string {
	location := strings.TrimSpace(i.Location)
	if !strings.HasPrefix(location, "#") {
		location = "#" + location
	}
	if i.Message == "" {
		return location
	}
	return location + ": " + i.Message
}

// PayloadError lists every issue found in a payload. It matches
// ErrSchemaValidation with errors.Is.
type PayloadError struct {
	Issues []Issue
}

func (e *PayloadError) Error() string {
	if len(e.Issues) == 0 {
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadError) Unwrap() error { return ErrSchemaValidation }

// Issues returns the issues carried by err, or a single issue holding its message.
func Issues(err error) []Issue {
	var payloadErr *PayloadError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &payloadErr):
		return payloadErr.Issues
	default:
		return []Issue{{Message: err.Error()}}
	}
}

// Schema is a compiled draft 2020-12 JSON schema.
type Schema struct {
	compiled *jsonschema.Schema
}

func Compile(document []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompile is Compile for embedded schemas; it panics on error.
func MustCompile(document []byte) *Schema {
	schema, err := Compile(document)
	if err != nil {
		panic(err)
	}
	return schema
}

// ValidateJSON decodes raw (numbers kept as json.Number) and validates it.
func (s *Schema) ValidateJSON(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return payload, s.Validate(payload)
}

// Validate checks a decoded payload. A nil schema accepts everything.
func (s *Schema) Validate(payload any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	err := s.compiled.Validate(payload)
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return &PayloadError{Issues: []Issue{{Message: err.Error()}}}
	}
	return &PayloadError{Issues: leaves(validationErr, nil)}
}

func leaves(node *jsonschema.ValidationError, into []Issue) []Issue {
	if len(node.Causes) == 0 {
		return append(into, Issue{
			Location: strings.TrimSpace(node.InstanceLocation),
			Message:  strings.TrimSpace(node.Message),
		})
	}
	for _, cause := range node.Causes {
		into = leaves(cause, into)
	}
	return into
}
