package builder

import (
	"slices"
	"time"
)

type Breakpoint string

const (
	LG  Breakpoint = "lg"
	MD  Breakpoint = "md"
	SM  Breakpoint = "sm"
	XS  Breakpoint = "xs"
	XXS Breakpoint = "xxs"
)

var Breakpoints = []Breakpoint{LG, MD, SM, XS, XXS}

type Widget struct {
	ID    string     `json:"id"`
	Type  WidgetType `json:"type"`
	Title string     `json:"title"`
}

// LayoutEntry places widget I on the grid at one breakpoint.
type LayoutEntry struct {
	I    string `json:"i"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW *int   `json:"minW,omitempty"`
	MinH *int   `json:"minH,omitempty"`
}

// Layouts holds one entry list per breakpoint. lg is always written, so an emptied grid
// stores as "lg": []; the other breakpoints are omitted when nil.
type Layouts struct {
	LG  []LayoutEntry `json:"lg"`
	MD  []LayoutEntry `json:"md,omitempty"`
	SM  []LayoutEntry `json:"sm,omitempty"`
	XS  []LayoutEntry `json:"xs,omitempty"`
	XXS []LayoutEntry `json:"xxs,omitempty"`
}

func (l *Layouts) slot(bp Breakpoint) *[]LayoutEntry {
	switch bp {
	case LG:
		return &l.LG
	case MD:
		return &l.MD
	case SM:
		return &l.SM
	case XS:
		return &l.XS
	case XXS:
		return &l.XXS
	}
	return nil
}

// Get returns the entries of one breakpoint; unknown breakpoints have none.
func (l Layouts) Get(bp Breakpoint) []LayoutEntry {
	if s := l.slot(bp); s != nil {
		return *s
	}
	return nil
}

// Clone returns a deep copy.
func (l Layouts) Clone() Layouts {
	var out Layouts
	for _, bp := range Breakpoints {
		src := l.Get(bp)
		if src == nil {
			continue
		}
		dst := make([]LayoutEntry, len(src))
		for i, e := range src {
			dst[i] = e
			if e.MinW != nil {
				dst[i].MinW = intPtr(*e.MinW)
			}
			if e.MinH != nil {
				dst[i].MinH = intPtr(*e.MinH)
			}
		}
		*out.slot(bp) = dst
	}
	return out
}

// without drops every entry for widget id at every breakpoint.
func (l Layouts) without(id string) Layouts {
	out := l.Clone()
	for _, bp := range Breakpoints {
		s := out.slot(bp)
		if *s == nil {
			continue
		}
		*s = slices.DeleteFunc(*s, func(e LayoutEntry) bool { return e.I == id })
	}
	return out
}

// bottom is the first free row under the entries of bp.
func (l Layouts) bottom(bp Breakpoint) int {
	y := 0
	for _, e := range l.Get(bp) {
		y = max(y, e.Y+e.H)
	}
	return y
}

// Snapshot is a persisted builder state.
type Snapshot struct {
	Widgets []Widget  `json:"widgets"`
	Layouts Layouts   `json:"layouts"`
	SavedAt time.Time `json:"savedAt"`
}

// Valid reports whether a stored snapshot can replace the defaults: widgets and the lg
// grid must be present, though either may be empty.
func (s *Snapshot) Valid() bool {
	return s != nil && s.Widgets != nil && s.Layouts.LG != nil
}

func intPtr(v int) *int { return &v }
