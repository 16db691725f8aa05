package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PayloadValidator checks event payloads against per-type JSON Schemas.
// The routing core treats payloads as opaque; validation happens once at
// the ingest boundary, before an event enters propagation. Event types
// without a registered schema pass unchecked.
type PayloadValidator struct {
	schemas map[string]*jsonschema.Schema // event type -> compiled schema
}

// NewPayloadValidator compiles the given schema files, keyed by event type.
// Returns an error if any schema fails to compile.
func NewPayloadValidator(paths map[string]string) (*PayloadValidator, error) {
	v := &PayloadValidator{schemas: make(map[string]*jsonschema.Schema, len(paths))}
	for eventType, path := range paths {
		s, err := jsonschema.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %q: %w", eventType, err)
		}
		v.schemas[eventType] = s
	}
	return v, nil
}

// Validate checks an event's payload against the schema registered for its
// type, if any. An empty payload with a registered schema is rejected.
func (v *PayloadValidator) Validate(e Event) error {
	if v == nil {
		return nil
	}
	s, ok := v.schemas[e.Type]
	if !ok {
		return nil
	}
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: type %q requires a payload", ErrInvalidEvent, e.Type)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(e.Payload))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: payload is not valid JSON: %v", ErrInvalidEvent, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: payload for %q: %v", ErrInvalidEvent, e.Type, err)
	}
	return nil
}
