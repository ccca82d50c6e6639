package llmcall

import (
	"sort"
	"sync"
	"time"
)

// DefaultCapacity bounds the number of calls kept in memory.
const DefaultCapacity = 500

// Store keeps the most recent calls in memory.
type Store struct {
	mu       sync.RWMutex
	calls    []*Call // oldest first
	byID     map[string]*Call
	capacity int
}

// NewStore creates a store holding at most capacity calls.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		byID:     make(map[string]*Call),
		capacity: capacity,
	}
}

// QueryFilter specifies filters for listing LLM calls.
type QueryFilter struct {
	SessionID string
	Username  string
	PromptKey string
	Provider  string
	Model     string
	After     *time.Time
	Before    *time.Time
	Success   *bool
	Limit     int
	Offset    int
}

// Add stores a call, evicting the oldest when full.
func (s *Store) Add(call *Call) {
	if call == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.calls) >= s.capacity {
		evicted := s.calls[0]
		delete(s.byID, evicted.ID)
		s.calls = s.calls[1:]
	}
	s.calls = append(s.calls, call)
	s.byID[call.ID] = call
}

// Get retrieves a single call by ID.
func (s *Store) Get(id string) (*Call, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// List returns calls matching filter, newest first.
func (s *Store) List(filter QueryFilter) []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Call
	skipped := 0
	for i := len(s.calls) - 1; i >= 0; i-- {
		c := s.calls[i]
		if !filter.matches(c) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, *c)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}

// CountByPromptKey returns call counts grouped by prompt key. An empty
// username counts every call.
func (s *Store) CountByPromptKey(username string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, c := range s.calls {
		if username != "" && c.Username != username {
			continue
		}
		counts[c.PromptKey]++
	}
	return counts
}

// Len returns the number of stored calls.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}

// PromptKeys returns the distinct prompt keys seen, sorted.
func (s *Store) PromptKeys() []string {
	counts := s.CountByPromptKey("")
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f QueryFilter) matches(c *Call) bool {
	switch {
	case f.SessionID != "" && c.SessionID != f.SessionID:
		return false
	case f.Username != "" && c.Username != f.Username:
		return false
	case f.PromptKey != "" && c.PromptKey != f.PromptKey:
		return false
	case f.Provider != "" && c.Provider != f.Provider:
		return false
	case f.Model != "" && c.Model != f.Model:
		return false
	case f.After != nil && !c.Timestamp.After(*f.After):
		return false
	case f.Before != nil && !c.Timestamp.Before(*f.Before):
		return false
	case f.Success != nil && c.Success != *f.Success:
		return false
	}
	return true
}
