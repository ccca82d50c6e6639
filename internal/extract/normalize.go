package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// normalizer converts a decoded JSON object into a Record for one schema.
type normalizer struct {
	mode  Mode
	notes []string
}

func (n *normalizer) note(path, format string, args ...any) {
	n.notes = append(n.notes, path+": "+fmt.Sprintf(format, args...))
}

// object normalizes obj against fields. path prefixes field names in errors.
func (n *normalizer) object(path string, fields []Field, obj map[string]any) (Record, *Error) {
	rec := make(Record, len(fields))
	for _, f := range fields {
		fp := joinPath(path, f.Name)
		raw, present := obj[f.Name]

		if !present || raw == nil {
			if f.Required {
				if present {
					return nil, mismatch(fp, "required field is null")
				}
				return nil, mismatch(fp, "required field is missing")
			}
			rec[f.Name] = zeroValue(f)
			continue
		}

		v, err := n.value(fp, f, raw)
		if err != nil {
			if f.Required || n.mode == Strict {
				return nil, err
			}
			n.note(err.Field, "%s; using default", err.Msg)
			v = zeroValue(f)
		}
		rec[f.Name] = v
	}
	return rec, nil
}

// value converts one present, non-null JSON value to the field's kind.
func (n *normalizer) value(path string, f Field, raw any) (any, *Error) {
	switch f.Kind {
	case KindString, KindOptionalString:
		s, ok := coerceString(raw)
		if !ok {
			return nil, mismatch(path, "expected string, got %s", jsonKind(raw))
		}
		return s, nil

	case KindBool:
		return n.boolValue(path, raw)

	case KindEnum:
		s, ok := coerceString(raw)
		if !ok {
			return nil, mismatch(path, "expected enum tag, got %s", jsonKind(raw))
		}
		if tag, ok := f.normalizeEnum(s); ok {
			return tag, nil
		}
		if n.mode == Strict {
			return nil, mismatch(path, "unknown value %q (allowed: %s)", s, strings.Join(f.Enum, ", "))
		}
		if f.Fallback == "" {
			n.note(path, "unknown value %q; using null", s)
			return nil, nil
		}
		n.note(path, "unknown value %q; using %s", s, f.Fallback)
		return f.Fallback, nil

	case KindStringList:
		items, ok := raw.([]any)
		if !ok {
			return nil, mismatch(path, "expected list, got %s", jsonKind(raw))
		}
		out := make([]string, 0, len(items))
		for i, item := range items {
			ip := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				if n.mode == Strict {
					return nil, mismatch(ip, "null list element")
				}
				n.note(ip, "dropped null element")
				continue
			}
			s, ok := coerceString(item)
			if !ok {
				return nil, mismatch(ip, "expected string, got %s", jsonKind(item))
			}
			out = append(out, s)
		}
		return out, nil

	case KindStringMap:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, mismatch(path, "expected mapping, got %s", jsonKind(raw))
		}
		out := make(map[string]string, len(m))
		for k, item := range m {
			kp := path + "." + k
			if item == nil {
				if n.mode == Strict {
					return nil, mismatch(kp, "null mapping value")
				}
				n.note(kp, "dropped null value")
				continue
			}
			s, ok := coerceString(item)
			if !ok {
				return nil, mismatch(kp, "expected string, got %s", jsonKind(item))
			}
			out[k] = s
		}
		return out, nil

	case KindRecordList:
		items, ok := raw.([]any)
		if !ok {
			return nil, mismatch(path, "expected list of records, got %s", jsonKind(raw))
		}
		out := make([]Record, 0, len(items))
		for i, item := range items {
			ip := fmt.Sprintf("%s[%d]", path, i)
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, mismatch(ip, "expected record, got %s", jsonKind(item))
			}
			rec, err := n.object(ip, f.Fields, obj)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		return out, nil
	}

	return nil, mismatch(path, "unsupported field kind %s", f.Kind)
}

func (n *normalizer) boolValue(path string, raw any) (any, *Error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		if n.mode == Permissive {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				n.note(path, "coerced %q to boolean", v)
				return b, nil
			}
		}
	}
	return nil, mismatch(path, "expected boolean, got %s", jsonKind(raw))
}

// coerceString accepts strings and converts numbers and booleans to their
// JSON text. Objects and arrays are never coerced.
func coerceString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// zeroValue is the value an absent optional field takes.
func zeroValue(f Field) any {
	switch f.Kind {
	case KindString:
		return ""
	case KindStringList:
		return []string{}
	case KindStringMap:
		return map[string]string{}
	case KindRecordList:
		return []Record{}
	}
	return nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
