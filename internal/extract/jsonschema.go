package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchema renders the schema as a draft 2020-12 JSON Schema document
// describing a normalized record: every field present, nullable fields
// allowing null, no extra keys.
func (s *Schema) JSONSchema() map[string]any {
	doc := objectSchema(s.Fields)
	doc["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	if s.Name != "" {
		doc["title"] = s.Name
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}
	return doc
}

// JSONSchemaText returns JSONSchema as indented JSON, for prompts.
func (s *Schema) JSONSchemaText() string {
	b, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func objectSchema(fields []Field) map[string]any {
	props := make(map[string]any, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		props[f.Name] = fieldSchema(f)
		names = append(names, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             names,
		"additionalProperties": false,
	}
}

func fieldSchema(f Field) map[string]any {
	var out map[string]any
	switch f.Kind {
	case KindString:
		out = map[string]any{"type": "string"}
	case KindOptionalString:
		out = map[string]any{"type": []any{"string", "null"}}
	case KindStringList:
		out = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	case KindStringMap:
		out = map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}}
	case KindRecordList:
		out = map[string]any{"type": "array", "items": objectSchema(f.Fields)}
	case KindBool:
		out = map[string]any{"type": []any{"boolean", "null"}}
	case KindEnum:
		tags := make([]any, 0, len(f.Enum)+1)
		for _, t := range f.Enum {
			tags = append(tags, t)
		}
		if !f.Required {
			tags = append(tags, nil)
		}
		out = map[string]any{"enum": tags}
	default:
		out = map[string]any{}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	return out
}

// compiledSchemas caches the compiled JSON Schema per *Schema.
var compiledSchemas sync.Map

// compiled returns the compiled JSON Schema for s, compiling it on first use.
func (s *Schema) compiled() (*jsonschema.Schema, error) {
	if c, ok := compiledSchemas.Load(s); ok {
		return c.(*jsonschema.Schema), nil
	}

	raw, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("render schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	c, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	actual, _ := compiledSchemas.LoadOrStore(s, c)
	return actual.(*jsonschema.Schema), nil
}

// validate checks a normalized record against the generated JSON Schema.
func (s *Schema) validate(rec Record) *Error {
	compiled, err := s.compiled()
	if err != nil {
		return mismatch("", "%v", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return mismatch("", "encode record: %v", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return mismatch("", "decode record: %v", err)
	}

	if err := compiled.Validate(doc); err != nil {
		e := &Error{Kind: SchemaMismatch, Msg: "record does not match schema", Err: err}
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			e.Field = pointerPath(leaf.InstanceLocation)
			e.Msg = leaf.Message
			e.Err = nil
		}
		return e
	}
	return nil
}

// pointerPath turns a JSON pointer like /lab_results/0/unit into
// lab_results[0].unit.
func pointerPath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if part == "" {
			continue
		}
		if isIndex(part) {
			fmt.Fprintf(&b, "[%s]", part)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
