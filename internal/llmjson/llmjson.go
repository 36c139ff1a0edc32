// Package llmjson recovers JSON objects from free-form language model output
// and validates them against JSON Schemas.
package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNoObject is returned when the text contains no decodable JSON object.
var ErrNoObject = errors.New("no JSON object found")

// StripFence removes a surrounding markdown code fence, with or without a language tag.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		tag := strings.TrimSpace(s[:nl])
		if tag == "" || strings.EqualFold(tag, "json") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

// FirstObject returns the first complete JSON object embedded in s.
// Text before and after the object is ignored.
func FirstObject(s string) (json.RawMessage, error) {
	s = StripFence(s)

	for offset := 0; offset < len(s); {
		i := strings.IndexByte(s[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(s[start:]))
		if err := dec.Decode(&raw); err == nil {
			return raw, nil
		}
		offset = start + 1
	}

	return nil, ErrNoObject
}

// Decode finds the first JSON object in s and returns it as a generic map
// with numbers kept as json.Number.
func Decode(s string) (map[string]any, error) {
	raw, err := FirstObject(s)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return obj, nil
}

// MustCompile compiles an inline schema document, panicking on error.
// It is meant for package-level schema variables.
func MustCompile(name, schema string) *jsonschema.Schema {
	return jsonschema.MustCompileString(name+".json", schema)
}

// Validate checks a decoded value against schema.
func Validate(schema *jsonschema.Schema, v any) error {
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// DecodeValid decodes the first JSON object in s and validates it against schema.
func DecodeValid(schema *jsonschema.Schema, s string) (map[string]any, error) {
	obj, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if err := Validate(schema, obj); err != nil {
		return nil, err
	}
	return obj, nil
}
