package api

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Format selects how CLI commands print server responses.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// format holds the --output choice for the running command.
var format atomic.Value

func init() {
	format.Store(FormatYAML)
}

// ParseFormat accepts "yaml", "yml" or "json" in any case. An empty
// string means YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want yaml or json)", s)
}

// SetOutputFormat applies the --output flag.
func SetOutputFormat(s string) error {
	f, err := ParseFormat(s)
	if err != nil {
		return err
	}
	format.Store(f)
	return nil
}

// JSONOutput reports whether commands should print raw JSON rather than
// a friendlier rendering such as recipe markdown.
func JSONOutput() bool {
	return format.Load().(Format) == FormatJSON
}

// Output prints data to stdout in the --output format.
func Output(data any) error {
	return Encode(os.Stdout, format.Load().(Format), data)
}

// Encode writes data to w as indented YAML or JSON.
func Encode(w io.Writer, f Format, data any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", f)
}

// WriteJSONFile saves data as indented JSON, the format of history exports
// and parsed report files.
func WriteJSONFile(path string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
