package session

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Trend directions.
const (
	DirectionUp           = "up"
	DirectionDown         = "down"
	DirectionStable       = "stable"
	DirectionInsufficient = "insufficient_data"
)

// stableBand is the percent change inside which a marker counts as stable.
const stableBand = 5.0

var numberPattern = regexp.MustCompile(`[-+]?(?:\d*\.\d+|\d+)`)

// ExtractNumeric returns the first number in a lab value such as "7.2 %" or
// "<5 mg/dL".
func ExtractNumeric(s string) (float64, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Point is one numeric reading of a marker.
type Point struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Value     float64   `json:"value" yaml:"value"`
	Raw       string    `json:"raw" yaml:"raw"`
	Filename  string    `json:"filename" yaml:"filename"`
}

// Trend summarizes the readings of one marker across reports.
type Trend struct {
	Marker        string  `json:"marker" yaml:"marker"`
	Points        []Point `json:"points" yaml:"points"`
	Readings      int     `json:"readings" yaml:"readings"`
	Latest        float64 `json:"latest" yaml:"latest"`
	First         float64 `json:"first" yaml:"first"`
	Change        float64 `json:"change" yaml:"change"`
	PercentChange float64 `json:"percent_change" yaml:"percent_change"`
	Direction     string  `json:"direction" yaml:"direction"`
}

// MarkerKey normalizes a marker name so "HbA1c" and " hba1c" share a series.
func MarkerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Series groups the numeric lab markers of reports by marker key, each series
// in time order. Values without a number are skipped.
func Series(reports []ReportEntry) map[string][]Point {
	series := make(map[string][]Point)
	for _, r := range reports {
		for name, raw := range r.Data.StringMap("lab_markers") {
			v, ok := ExtractNumeric(raw)
			if !ok {
				continue
			}
			key := MarkerKey(name)
			series[key] = append(series[key], Point{Timestamp: r.Timestamp, Value: v, Raw: raw, Filename: r.Filename})
		}
	}
	for _, pts := range series {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Timestamp.Before(pts[j].Timestamp) })
	}
	return series
}

// Trends computes a Trend per marker, sorted by marker key.
func Trends(reports []ReportEntry) []Trend {
	series := Series(reports)
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	trends := make([]Trend, 0, len(keys))
	for _, k := range keys {
		trends = append(trends, NewTrend(k, series[k]))
	}
	return trends
}

// NewTrend summarizes points, which must be in time order.
func NewTrend(marker string, points []Point) Trend {
	t := Trend{Marker: marker, Points: points, Readings: len(points), Direction: DirectionInsufficient}
	if len(points) == 0 {
		return t
	}
	t.Latest = points[len(points)-1].Value
	t.First = points[0].Value
	if len(points) < 2 {
		return t
	}

	t.Change = t.Latest - t.First
	if t.First != 0 {
		t.PercentChange = t.Change / t.First * 100
	}
	switch {
	case t.PercentChange > stableBand:
		t.Direction = DirectionUp
	case t.PercentChange < -stableBand:
		t.Direction = DirectionDown
	default:
		t.Direction = DirectionStable
	}
	return t
}

// Trends computes marker trends over the session's report history.
func (s *Session) Trends() []Trend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Trends(s.reports)
}
