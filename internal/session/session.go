// Package session holds per-login dashboard state: the active clinical
// profile and the report and recipe history. Nothing is persisted; logging
// out or restarting the server discards it.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
)

// DefaultHistoryLimit bounds each history list when no limit is configured.
const DefaultHistoryLimit = 100

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// ReportEntry is one analyzed report.
type ReportEntry struct {
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Filename  string         `json:"filename" yaml:"filename"`
	Data      extract.Record `json:"data" yaml:"data"`
}

// RecipeEntry is one recipe suggestion.
type RecipeEntry struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Meal      string    `json:"meal" yaml:"meal"`
	Cuisines  []string  `json:"cuisines" yaml:"cuisines"`
	Content   string    `json:"content" yaml:"content"`
}

// Stats summarizes a session for the dashboard sidebar.
type Stats struct {
	ProfileActive     bool `json:"profile_active" yaml:"profile_active"`
	ReportsAnalyzed   int  `json:"reports_analyzed" yaml:"reports_analyzed"`
	RecipesGenerated  int  `json:"recipes_generated" yaml:"recipes_generated"`
	ImagesUploaded    int  `json:"images_uploaded" yaml:"images_uploaded"`
	TrackedLabMarkers int  `json:"tracked_lab_markers" yaml:"tracked_lab_markers"`
}

// Session is the state of one login. Its methods are safe for concurrent use.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time

	mu       sync.RWMutex
	profile  extract.Record
	reports  []ReportEntry
	recipes  []RecipeEntry
	images   int
	limit    int
	lastSeen time.Time
	now      func() time.Time
}

// Profile returns the active clinical profile, or nil.
func (s *Session) Profile() extract.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetProfile makes rec the active profile and appends it to the report
// history under filename.
func (s *Session) SetProfile(filename string, rec extract.Record) ReportEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ReportEntry{Timestamp: s.now(), Filename: filename, Data: rec}
	s.profile = rec
	s.reports = appendBounded(s.reports, entry, s.limit)
	return entry
}

// ClearProfile drops the active profile but keeps history.
func (s *Session) ClearProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
}

// ClearReports drops the report history and the active profile derived from it.
func (s *Session) ClearReports() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = nil
	s.profile = nil
}

// Reports returns the report history, oldest first.
func (s *Session) Reports() []ReportEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ReportEntry{}, s.reports...)
}

// AddRecipe appends a recipe suggestion to the history. images is the number
// of photos the suggestion was made from.
func (s *Session) AddRecipe(meal string, cuisines []string, content string, images int) RecipeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cuisines == nil {
		cuisines = []string{}
	}
	entry := RecipeEntry{Timestamp: s.now(), Meal: meal, Cuisines: cuisines, Content: content}
	s.recipes = appendBounded(s.recipes, entry, s.limit)
	s.images += images
	return entry
}

// ClearRecipes drops the recipe history.
func (s *Session) ClearRecipes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = nil
}

// Recipes returns the recipe history, oldest first.
func (s *Session) Recipes() []RecipeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RecipeEntry{}, s.recipes...)
}

// Stats returns counters for the session.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		ProfileActive:     s.profile != nil,
		ReportsAnalyzed:   len(s.reports),
		RecipesGenerated:  len(s.recipes),
		ImagesUploaded:    s.images,
		TrackedLabMarkers: len(Series(s.reports)),
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func appendBounded[T any](list []T, item T, limit int) []T {
	list = append(list, item)
	if limit > 0 && len(list) > limit {
		list = append(list[:0:0], list[len(list)-limit:]...)
	}
	return list
}

// Store holds live sessions keyed by ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limit    int
	now      func() time.Time
}

// NewStore creates a session store. historyLimit bounds each history list;
// zero uses DefaultHistoryLimit.
func NewStore(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Store{
		sessions: make(map[string]*Session),
		limit:    historyLimit,
		now:      time.Now,
	}
}

// Create starts a session for username.
func (st *Store) Create(username string) *Session {
	now := st.now()
	s := &Session{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		limit:     st.limit,
		lastSeen:  now,
		now:       st.now,
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with id and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch()
	return s, nil
}

// Delete ends a session. Deleting an unknown ID is not an error.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Expire removes sessions idle for longer than maxIdle and returns how many
// were removed.
func (st *Store) Expire(maxIdle time.Duration) int {
	cutoff := st.now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
