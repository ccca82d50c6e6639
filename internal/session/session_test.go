package session

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(limit int) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	st := NewStore(limit)
	st.now = clock.now
	return st, clock
}

func profile(markers map[string]string) extract.Record {
	return extract.Record{
		"conditions":  []string{"Type 2 diabetes"},
		"medications": []string{},
		"lab_markers": markers,
	}
}

func TestStoreLifecycle(t *testing.T) {
	st, clock := newTestStore(0)

	s := st.Create("alice")
	if s.ID == "" || s.Username != "alice" {
		t.Fatalf("Create() = %+v", s)
	}
	got, err := st.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	other := st.Create("alice")
	if other.ID == s.ID {
		t.Error("sessions should get distinct IDs")
	}

	st.Delete(s.ID)
	if _, err := st.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v", err)
	}
	st.Delete("missing")

	clock.advance(2 * time.Hour)
	if n := st.Expire(time.Hour); n != 1 || st.Len() != 0 {
		t.Errorf("Expire() = %d, Len() = %d", n, st.Len())
	}
}

func TestProfileAndHistory(t *testing.T) {
	st, _ := newTestStore(0)
	s := st.Create("bob")

	if s.Profile() != nil {
		t.Fatal("new session should have no profile")
	}

	rec := profile(map[string]string{"HbA1c": "7.2 %"})
	entry := s.SetProfile("jan.pdf", rec)
	if entry.Filename != "jan.pdf" || entry.Timestamp.IsZero() {
		t.Errorf("entry = %+v", entry)
	}
	if s.Profile() == nil || len(s.Reports()) != 1 {
		t.Fatal("profile should be active with one history entry")
	}

	s.ClearProfile()
	if s.Profile() != nil || len(s.Reports()) != 1 {
		t.Error("ClearProfile should keep history")
	}

	s.SetProfile("feb.pdf", rec)
	s.ClearReports()
	if s.Profile() != nil || len(s.Reports()) != 0 {
		t.Error("ClearReports should drop history and the active profile")
	}

	s.AddRecipe("Dinner", nil, "## Dal", 2)
	s.AddRecipe("Lunch", []string{"Italian"}, "## Pasta", 1)
	recipes := s.Recipes()
	if len(recipes) != 2 || recipes[0].Cuisines == nil || recipes[1].Meal != "Lunch" {
		t.Errorf("recipes = %+v", recipes)
	}

	stats := s.Stats()
	if stats.RecipesGenerated != 2 || stats.ImagesUploaded != 3 || stats.ProfileActive {
		t.Errorf("Stats() = %+v", stats)
	}

	s.ClearRecipes()
	if len(s.Recipes()) != 0 {
		t.Error("ClearRecipes should empty the history")
	}
}

func TestHistoryLimit(t *testing.T) {
	st, _ := newTestStore(2)
	s := st.Create("carol")
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		s.SetProfile(name, profile(nil))
	}
	reports := s.Reports()
	if len(reports) != 2 || reports[0].Filename != "b.txt" || reports[1].Filename != "c.txt" {
		t.Errorf("reports = %+v", reports)
	}
}

func TestExtractNumeric(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"7.2 %", 7.2, true},
		{"126 mg/dL", 126, true},
		{"<5 mg/dL", 5, true},
		{".5 ng/mL", 0.5, true},
		{"-1.5 SD", -1.5, true},
		{"+3", 3, true},
		{"120/80 mmHg", 120, true},
		{"positive", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ExtractNumeric(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractNumeric(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTrends(t *testing.T) {
	st, clock := newTestStore(0)
	s := st.Create("dave")

	s.SetProfile("jan.pdf", profile(map[string]string{"HbA1c": "8.0 %", "LDL": "100 mg/dL", "Note": "normal"}))
	clock.advance(24 * time.Hour)
	s.SetProfile("feb.pdf", profile(map[string]string{" hba1c ": "7.0 %", "LDL": "103 mg/dL", "TSH": "2.1"}))
	clock.advance(24 * time.Hour)
	s.SetProfile("mar.pdf", profile(map[string]string{"HBA1C": "6.8%"}))

	trends := s.Trends()
	if len(trends) != 3 {
		t.Fatalf("Trends() = %d markers, want 3", len(trends))
	}

	byMarker := make(map[string]Trend)
	for _, tr := range trends {
		byMarker[tr.Marker] = tr
	}

	hb := byMarker["hba1c"]
	if hb.Readings != 3 || hb.First != 8.0 || hb.Latest != 6.8 || hb.Direction != DirectionDown {
		t.Errorf("hba1c = %+v", hb)
	}
	if math.Abs(hb.PercentChange-(-15)) > 1e-9 {
		t.Errorf("hba1c percent = %v, want -15", hb.PercentChange)
	}
	if hb.Points[0].Filename != "jan.pdf" {
		t.Errorf("points not in time order: %+v", hb.Points)
	}

	if ldl := byMarker["ldl"]; ldl.Direction != DirectionStable {
		t.Errorf("ldl = %+v, want stable", ldl)
	}
	if tsh := byMarker["tsh"]; tsh.Direction != DirectionInsufficient || tsh.Latest != 2.1 {
		t.Errorf("tsh = %+v", tsh)
	}
	if s.Stats().TrackedLabMarkers != 3 {
		t.Errorf("Stats().TrackedLabMarkers = %d", s.Stats().TrackedLabMarkers)
	}
}

func TestNewTrendDirection(t *testing.T) {
	pts := func(vs ...float64) []Point {
		out := make([]Point, len(vs))
		for i, v := range vs {
			out[i] = Point{Value: v}
		}
		return out
	}
	tests := []struct {
		name string
		pts  []Point
		want string
	}{
		{"up", pts(100, 106), DirectionUp},
		{"boundary is stable", pts(100, 105), DirectionStable},
		{"down", pts(100, 94), DirectionDown},
		{"zero first", pts(0, 10), DirectionStable},
		{"single", pts(5), DirectionInsufficient},
		{"empty", nil, DirectionInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewTrend("m", tt.pts).Direction; got != tt.want {
				t.Errorf("Direction = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExport(t *testing.T) {
	st, _ := newTestStore(0)
	s := st.Create("erin")
	s.SetProfile("jan.pdf", profile(map[string]string{"LDL": "100"}))

	name, data, err := s.Export(ExportReports)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if name != "medical_history_20260314.json" {
		t.Errorf("filename = %q", name)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil || len(entries) != 1 || entries[0]["filename"] != "jan.pdf" {
		t.Errorf("export = %s (%v)", data, err)
	}

	name, data, err = s.Export(ExportRecipes)
	if err != nil || name != "recipe_history_20260314.json" || string(data) != "[]" {
		t.Errorf("recipes export = %q, %s, %v", name, data, err)
	}

	if _, _, err := s.Export("labs"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
