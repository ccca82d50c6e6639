package repair

import (
	"errors"
	"strings"
	"testing"

	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
)

func TestRepairPromptRenders(t *testing.T) {
	r := prompts.NewResolver(nil, nil)
	RegisterPrompts(r)

	data := NewData(`{"type":"object"}`, "  not json  ", errors.New("no JSON object found"))
	text, p, err := r.Render(PromptKey, data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{`{"type":"object"}`, "not json", "no JSON object found"} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
	if p.Key != PromptKey {
		t.Errorf("Key = %q", p.Key)
	}
}

func TestNewDataTruncates(t *testing.T) {
	d := NewData("{}", strings.Repeat("x", maxEcho+100), nil)
	if !strings.HasSuffix(d.Output, "...[truncated]") {
		t.Error("long output should be truncated")
	}
	if d.Issue != "" {
		t.Errorf("Issue = %q", d.Issue)
	}
}
