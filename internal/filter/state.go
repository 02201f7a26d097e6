// Package filter holds the dashboard filter and drill-down state. Every operation returns a
// new State; values are never mutated in place and nothing here is persisted.
package filter

import (
	"fmt"
	"slices"
	"time"
)

type Period string

const (
	Period7d     Period = "7d"
	Period30d    Period = "30d"
	Period90d    Period = "90d"
	Period6m     Period = "6m"
	Period1y     Period = "1y"
	PeriodYTD    Period = "ytd"
	PeriodAll    Period = "all"
	PeriodCustom Period = "custom"
)

// PeriodOption is a selectable period with its display label.
type PeriodOption struct {
	Value Period `json:"value"`
	Label string `json:"label"`
}

var PeriodOptions = []PeriodOption{
	{Period7d, "7 dias"},
	{Period30d, "30 dias"},
	{Period90d, "90 dias"},
	{Period6m, "6 meses"},
	{Period1y, "1 ano"},
	{PeriodYTD, "Ano atual"},
	{PeriodAll, "Todos"},
}

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Period7d, Period30d, Period90d, Period6m, Period1y, PeriodYTD, PeriodAll, PeriodCustom:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

const day = 24 * time.Hour

// PeriodRange resolves a period relative to now. The range always ends at 23:59:59 today.
// Unknown periods (custom included) fall back to the last 30 days.
func PeriodRange(p Period, now time.Time) DateRange {
	y, m, d := now.Date()
	loc := now.Location()
	to := time.Date(y, m, d, 23, 59, 59, 0, loc)
	var from time.Time
	switch p {
	case Period7d:
		from = to.Add(-7 * day)
	case Period30d:
		from = to.Add(-30 * day)
	case Period90d:
		from = to.Add(-90 * day)
	case Period6m:
		from = time.Date(y, m-6, d, 0, 0, 0, 0, loc)
	case Period1y:
		from = time.Date(y-1, m, d, 0, 0, 0, 0, loc)
	case PeriodYTD:
		from = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case PeriodAll:
		from = time.Date(2020, time.January, 1, 0, 0, 0, 0, loc)
	default:
		from = to.Add(-30 * day)
	}
	return DateRange{From: from, To: to}
}

// CrossFilter is the single dimension=value selection made by clicking a chart element.
type CrossFilter struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

type DrillLevel struct {
	Label     string `json:"label"`
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

type State struct {
	Period      Period       `json:"period"`
	Range       DateRange    `json:"dateRange"`
	Owners      []string     `json:"owners"`
	Stages      []string     `json:"stages"`
	Sources     []string     `json:"sources"`
	Segments    []string     `json:"segments"`
	CrossFilter *CrossFilter `json:"crossFilter"`
	DrillPath   []DrillLevel `json:"drillPath"`
}

// New returns the default state: period "all", no selections.
func New(now time.Time) State {
	return State{Period: PeriodAll, Range: PeriodRange(PeriodAll, now)}
}

func (s State) SetPeriod(p Period, now time.Time) State {
	s.Period = p
	s.Range = PeriodRange(p, now)
	return s
}

// SetDateRange selects an explicit range and switches the period to custom.
func (s State) SetDateRange(from, to time.Time) State {
	s.Period = PeriodCustom
	s.Range = DateRange{From: from, To: to}
	return s
}

// Toggle removes v from arr if present, appends it otherwise. arr is not modified.
func Toggle(arr []string, v string) []string {
	if i := slices.Index(arr, v); i >= 0 {
		out := make([]string, 0, len(arr)-1)
		for _, x := range arr {
			if x != v {
				out = append(out, x)
			}
		}
		return out
	}
	return append(slices.Clone(arr), v)
}

func (s State) ToggleOwner(v string) State   { s.Owners = Toggle(s.Owners, v); return s }
func (s State) ToggleStage(v string) State   { s.Stages = Toggle(s.Stages, v); return s }
func (s State) ToggleSource(v string) State  { s.Sources = Toggle(s.Sources, v); return s }
func (s State) ToggleSegment(v string) State { s.Segments = Toggle(s.Segments, v); return s }

// SetCrossFilter selects dim=val. Selecting the pair already active clears it; any other pair
// replaces it.
func (s State) SetCrossFilter(dim, val string) State {
	if cf := s.CrossFilter; cf != nil && cf.Dimension == dim && cf.Value == val {
		s.CrossFilter = nil
		return s
	}
	s.CrossFilter = &CrossFilter{Dimension: dim, Value: val}
	return s
}

func (s State) ClearCrossFilter() State {
	s.CrossFilter = nil
	return s
}

func (s State) PushDrill(l DrillLevel) State {
	s.DrillPath = append(slices.Clone(s.DrillPath), l)
	return s
}

// PopDrill drops the last drill level. Popping an empty path is a no-op.
func (s State) PopDrill() State {
	if len(s.DrillPath) > 0 {
		s.DrillPath = slices.Clone(s.DrillPath[:len(s.DrillPath)-1])
	}
	return s
}

func (s State) ClearDrill() State {
	s.DrillPath = nil
	return s
}

// ClearAll resets to the default state, drill path included.
func (s State) ClearAll(now time.Time) State { return New(now) }

// ActiveFilterCount counts a non-"all" period, every selected value and the cross-filter.
// The drill path does not count.
func (s State) ActiveFilterCount() int {
	c := len(s.Owners) + len(s.Stages) + len(s.Sources) + len(s.Segments)
	if s.Period != PeriodAll {
		c++
	}
	if s.CrossFilter != nil {
		c++
	}
	return c
}

// InDateRange reports whether a date string falls inside the range, bounds inclusive.
// Empty or unparseable dates pass, as does everything while the period is "all".
func (s State) InDateRange(date string) bool {
	if date == "" || s.Period == PeriodAll {
		return true
	}
	d, ok := parseDate(date, s.Range.To.Location())
	if !ok {
		return true
	}
	return !d.Before(s.Range.From) && !d.After(s.Range.To)
}

func parseDate(v string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, loc); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(time.DateTime, v, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// MatchesFilters reports whether an entity passes every active filter. A field the entity
// lacks never causes rejection.
func (s State) MatchesFilters(e Entity) bool {
	if !s.InDateRange(e.CreatedAt) {
		return false
	}
	if !allowed(s.Owners, e.Owner) || !allowed(s.Stages, e.Stage) || !allowed(s.Segments, e.Segment) {
		return false
	}
	src := e.Source
	if src == "" {
		src = e.Origin
	}
	if !allowed(s.Sources, src) {
		return false
	}
	if cf := s.CrossFilter; cf != nil {
		if v := e.Field(cf.Dimension); v != "" && v != cf.Value {
			return false
		}
	}
	return true
}

func allowed(selected []string, v string) bool {
	return len(selected) == 0 || v == "" || slices.Contains(selected, v)
}
