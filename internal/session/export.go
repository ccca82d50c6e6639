package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Export kinds.
const (
	ExportReports = "reports"
	ExportRecipes = "recipes"
)

// ExportFilename returns the download name for kind on day t.
func ExportFilename(kind string, t time.Time) (string, error) {
	switch kind {
	case ExportReports:
		return "medical_history_" + t.Format("20060102") + ".json", nil
	case ExportRecipes:
		return "recipe_history_" + t.Format("20060102") + ".json", nil
	}
	return "", fmt.Errorf("unknown export kind %q", kind)
}

// Export renders a history list as indented JSON along with its download
// name. An empty history exports as an empty array.
func (s *Session) Export(kind string) (filename string, data []byte, err error) {
	filename, err = ExportFilename(kind, s.now())
	if err != nil {
		return "", nil, err
	}

	var v any
	switch kind {
	case ExportReports:
		v = s.Reports()
	case ExportRecipes:
		v = s.Recipes()
	}
	data, err = json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode %s history: %w", kind, err)
	}
	return filename, data, nil
}
