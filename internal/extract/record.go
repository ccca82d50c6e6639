package extract

import (
	"encoding/json"
	"fmt"
)

// Record is a normalized extraction result. Every schema field is present.
// Values are string, nil, bool, []string, map[string]string or []Record.
type Record map[string]any

// String returns a string field, or "" if it is null or not a string.
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// OptString returns a nullable string field.
func (r Record) OptString(name string) *string {
	s, ok := r[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// Strings returns a list field.
func (r Record) Strings(name string) []string {
	v, _ := r[name].([]string)
	return v
}

// StringMap returns a mapping field.
func (r Record) StringMap(name string) map[string]string {
	v, _ := r[name].(map[string]string)
	return v
}

// Records returns a nested record list field.
func (r Record) Records(name string) []Record {
	v, _ := r[name].([]Record)
	return v
}

// Bool returns a nullable boolean field.
func (r Record) Bool(name string) *bool {
	b, ok := r[name].(bool)
	if !ok {
		return nil
	}
	return &b
}

// Decode copies the record into v, typically one of the typed structs in
// this package.
func (r Record) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// JSON returns the record as indented JSON.
func (r Record) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
