package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// fencePattern matches a markdown fence marker line, with or without a
// language tag. Backticks inside a line of content are left alone.
var fencePattern = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+.-]*[ \t]*\r?$")

// StripFences removes every fenced-code-block marker line from s and trims the result.
func StripFences(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	return strings.TrimSpace(fencePattern.ReplaceAllString(s, ""))
}

// locateObject returns the decoded JSON object carried by text.
//
// A text that is entirely one JSON value is used as-is; a non-object value is
// rejected. Otherwise the candidate is the first '{' and its balanced '}'.
// When that span does not decode, the scan resumes after it, never inside
// it. A '{' without a balanced '}' ends the search as malformed.
func locateObject(text string) (map[string]any, error) {
	if text == "" {
		return nil, malformed("empty input", nil)
	}

	if v, err := decodeValue(text); err == nil {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &Error{
				Kind: UnsupportedInputKind,
				Msg:  fmt.Sprintf("top-level value is %s, expected object", jsonKind(v)),
			}
		}
		return obj, nil
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, malformed("no JSON object found", nil)
	}

	var lastErr error
	for start >= 0 {
		end := matchBrace(text, start)
		if end < 0 {
			return nil, malformed("unbalanced braces", lastErr)
		}
		v, err := decodeValue(text[start : end+1])
		if err == nil {
			if obj, ok := v.(map[string]any); ok {
				return obj, nil
			}
		}
		lastErr = err

		next := strings.IndexByte(text[end+1:], '{')
		if next < 0 {
			break
		}
		start = end + 1 + next
	}
	return nil, malformed("no parseable JSON object found", lastErr)
}

// matchBrace returns the index of the '}' closing the '{' at start, or -1.
// Braces inside JSON string literals are ignored.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// decodeValue decodes exactly one JSON value from s, keeping numbers as
// json.Number so they can be coerced to strings without loss.
func decodeValue(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
