// Package extract recovers schema-conforming JSON records from free-form AI
// completion text.
//
// Model output is untrusted: it may be wrapped in markdown code fences,
// surrounded by prose, missing fields, or simply not JSON. Extract strips the
// fences, locates the first balanced JSON object, and normalizes it against a
// declarative Schema so that every field of the result is present with a
// well-defined type.
package extract

import "strings"

// Kind is the declared type of a schema field.
type Kind int

const (
	// KindString is a non-nullable string. Absent optional values become "".
	KindString Kind = iota
	// KindOptionalString is a nullable string. Absent values become null.
	KindOptionalString
	// KindStringList is a list of strings. Absent values become [].
	KindStringList
	// KindStringMap is a string to string mapping. Absent values become {}.
	KindStringMap
	// KindRecordList is a list of nested records described by Field.Fields.
	KindRecordList
	// KindBool is a nullable boolean.
	KindBool
	// KindEnum is a nullable string restricted to Field.Enum.
	KindEnum
)

var kindNames = map[Kind]string{
	KindString:         "string",
	KindOptionalString: "optional string",
	KindStringList:     "list of string",
	KindStringMap:      "mapping",
	KindRecordList:     "list of record",
	KindBool:           "boolean",
	KindEnum:           "enum",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Field describes one key of an extraction schema.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Description string

	// Enum lists the accepted tags for KindEnum.
	Enum []string
	// Fallback is the tag substituted for unknown enum values in permissive mode.
	// Empty means unknown values become null.
	Fallback string

	// Fields describes the element record for KindRecordList.
	Fields []Field
}

// Schema is a named set of fields the extracted object must satisfy.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Required returns the names of required fields in declaration order.
func (s *Schema) Required() []string {
	return requiredNames(s.Fields)
}

func requiredNames(fields []Field) []string {
	var names []string
	for _, f := range fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// normalizeEnum returns the canonical tag matching v, ignoring case and
// surrounding whitespace.
func (f Field) normalizeEnum(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, tag := range f.Enum {
		if strings.EqualFold(tag, v) {
			return tag, true
		}
	}
	return "", false
}
