package llmcall

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

func TestFromChatResult(t *testing.T) {
	temp := 0.1
	result := &providers.ChatResult{
		Content:          `{"conditions": []}`,
		PromptTokens:     100,
		CompletionTokens: 20,
		ExecutionTime:    1500 * time.Millisecond,
		Provider:         "gemini",
		ModelUsed:        "gemini-3-flash-preview",
		Attempts:         1,
		Success:          true,
	}

	call := FromChatResult(result, RecordOptions{
		SessionID:   "s1",
		Username:    "alice",
		PromptKey:   "clinical.profile",
		PromptHash:  "abc",
		Temperature: &temp,
	})

	if call.ID == "" {
		t.Error("expected generated ID")
	}
	if call.LatencyMs != 1500 || call.InputTokens != 100 || call.OutputTokens != 20 {
		t.Errorf("metrics = %+v", call)
	}
	if call.PromptKey != "clinical.profile" || call.PromptHash != "abc" || *call.Temperature != 0.1 {
		t.Errorf("traceability = %+v", call)
	}
	if !call.Success || call.Error != "" {
		t.Errorf("status = %v %q", call.Success, call.Error)
	}

	t.Run("extraction failure overrides success", func(t *testing.T) {
		call := FromChatResult(result, RecordOptions{Err: errors.New("malformed")})
		if call.Success || call.Error != "malformed" {
			t.Errorf("call = %+v", call)
		}
	})

	t.Run("provider failure", func(t *testing.T) {
		call := FromChatResult(&providers.ChatResult{Success: false, ErrorMessage: "quota"}, RecordOptions{})
		if call.Success || call.Error != "quota" {
			t.Errorf("call = %+v", call)
		}
	})

	if FromChatResult(nil, RecordOptions{}) != nil {
		t.Error("nil result should give nil call")
	}
}

func TestStore(t *testing.T) {
	s := NewStore(3)
	base := time.Now()
	for i := 0; i < 4; i++ {
		s.Add(&Call{
			ID:        fmt.Sprintf("c%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Username:  []string{"alice", "bob"}[i%2],
			PromptKey: []string{"clinical.profile", "kitchen.recipes"}[i%2],
			Success:   i != 2,
		})
	}

	t.Run("evicts oldest", func(t *testing.T) {
		if s.Len() != 3 {
			t.Errorf("Len() = %d, want 3", s.Len())
		}
		if _, ok := s.Get("c0"); ok {
			t.Error("c0 should have been evicted")
		}
		if c, ok := s.Get("c3"); !ok || c.ID != "c3" {
			t.Error("c3 should be present")
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		calls := s.List(QueryFilter{})
		if len(calls) != 3 || calls[0].ID != "c3" || calls[2].ID != "c1" {
			t.Errorf("List() = %v", ids(calls))
		}
	})

	t.Run("filters", func(t *testing.T) {
		if got := ids(s.List(QueryFilter{Username: "bob"})); fmt.Sprint(got) != "[c3 c1]" {
			t.Errorf("by username = %v", got)
		}
		failed := false
		if got := ids(s.List(QueryFilter{Success: &failed})); fmt.Sprint(got) != "[c2]" {
			t.Errorf("by success = %v", got)
		}
		after := base.Add(1500 * time.Millisecond)
		if got := ids(s.List(QueryFilter{After: &after})); fmt.Sprint(got) != "[c3 c2]" {
			t.Errorf("by after = %v", got)
		}
		if got := ids(s.List(QueryFilter{Limit: 1, Offset: 1})); fmt.Sprint(got) != "[c2]" {
			t.Errorf("limit/offset = %v", got)
		}
	})

	t.Run("counts", func(t *testing.T) {
		counts := s.CountByPromptKey("")
		if counts["kitchen.recipes"] != 2 || counts["clinical.profile"] != 1 {
			t.Errorf("CountByPromptKey() = %v", counts)
		}
		if counts := s.CountByPromptKey("alice"); counts["clinical.profile"] != 1 || len(counts) != 1 {
			t.Errorf("CountByPromptKey(alice) = %v", counts)
		}
		if keys := s.PromptKeys(); fmt.Sprint(keys) != "[clinical.profile kitchen.recipes]" {
			t.Errorf("PromptKeys() = %v", keys)
		}
	})
}

func TestRecorder(t *testing.T) {
	store := NewStore(10)
	r := NewRecorder(store, nil)

	id := r.Record(&providers.ChatResult{Success: true, Provider: "mock"}, RecordOptions{PromptKey: "report.parse"})
	if id == "" {
		t.Fatal("Record() returned empty id")
	}
	if c, ok := store.Get(id); !ok || c.PromptKey != "report.parse" {
		t.Errorf("stored call = %+v", c)
	}

	var nilRecorder *Recorder
	if nilRecorder.Record(&providers.ChatResult{}, RecordOptions{}) != "" {
		t.Error("nil recorder should discard")
	}
}

func ids(calls []Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.ID
	}
	return out
}
