// Package builder is the user-arranged dashboard: a list of widgets plus their grid
// placement per breakpoint, persisted per user through a Persister.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DefaultUserID is used when no user is given.
const DefaultUserID = "default"

// ErrMalformedSnapshot marks a stored value that cannot be read back as a Snapshot.
var ErrMalformedSnapshot = errors.New("malformed layout snapshot")

// Persister stores one Snapshot per user. Load returns nil, nil when nothing is stored.
type Persister interface {
	Load(ctx context.Context, userID string) (*Snapshot, error)
	Save(ctx context.Context, userID string, s Snapshot) (time.Time, error)
	Delete(ctx context.Context, userID string) error
}

// Model is the in-memory builder state for one user. It is not safe for concurrent use.
type Model struct {
	persister Persister
	userID    string
	log       *slog.Logger
	newID     func() string

	widgets []Widget
	layouts Layouts
}

type Option func(*Model)

func WithLogger(l *slog.Logger) Option { return func(m *Model) { m.log = l } }

// WithIDGenerator replaces the widget id source.
func WithIDGenerator(f func() string) Option { return func(m *Model) { m.newID = f } }

// New returns a model holding the default dashboard.
func New(p Persister, userID string, opts ...Option) *Model {
	if userID == "" {
		userID = DefaultUserID
	}
	m := &Model{
		persister: p,
		userID:    userID,
		log:       slog.Default(),
		newID:     func() string { return "w-" + uuid.NewString() },
		widgets:   DefaultWidgets(),
		layouts:   DefaultLayouts(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Model) UserID() string { return m.userID }

func (m *Model) Widgets() []Widget { return slices.Clone(m.widgets) }

func (m *Model) Layouts() Layouts { return m.layouts.Clone() }

// AddWidget appends a widget of type t under everything else on the lg grid, sized from
// the catalog.
func (m *Model) AddWidget(t WidgetType) (Widget, error) {
	item, ok := Lookup(t)
	if !ok {
		return Widget{}, fmt.Errorf("%w: %q", ErrUnknownWidgetType, t)
	}
	w := Widget{ID: m.newID(), Type: t, Title: item.Label}
	entry := LayoutEntry{
		I:    w.ID,
		X:    0,
		Y:    m.layouts.bottom(LG),
		W:    item.DefaultW,
		H:    item.DefaultH,
		MinW: intPtr(item.MinW),
		MinH: intPtr(item.MinH),
	}
	m.widgets = append(m.widgets, w)
	m.layouts = m.layouts.Clone()
	m.layouts.LG = append(m.layouts.LG, entry)
	return w, nil
}

// RemoveWidget drops the widget and its entries at every breakpoint. Unknown ids are ignored.
func (m *Model) RemoveWidget(id string) {
	m.widgets = slices.DeleteFunc(slices.Clone(m.widgets), func(w Widget) bool { return w.ID == id })
	m.layouts = m.layouts.without(id)
}

// OnLayoutChange replaces every breakpoint with the grid's current placement.
func (m *Model) OnLayoutChange(l Layouts) {
	m.layouts = l.Clone()
}

// Save persists the current widgets and layouts and returns the stored timestamp.
func (m *Model) Save(ctx context.Context) (time.Time, error) {
	savedAt, err := m.persister.Save(ctx, m.userID, Snapshot{Widgets: m.Widgets(), Layouts: m.Layouts()})
	if err != nil {
		return time.Time{}, fmt.Errorf("save layout %s: %w", m.userID, err)
	}
	return savedAt, nil
}

// Load replaces the state with the stored snapshot. Nothing stored, a snapshot missing
// widgets or layouts, or one the persister reports as ErrMalformedSnapshot leaves the
// defaults in place without error. Any other persister failure also falls back to the
// defaults and is returned.
func (m *Model) Load(ctx context.Context) error {
	m.widgets, m.layouts = DefaultWidgets(), DefaultLayouts()
	snap, err := m.persister.Load(ctx, m.userID)
	if errors.Is(err, ErrMalformedSnapshot) {
		m.log.Warn("stored layout unreadable, using defaults", slog.String("user", m.userID), slog.String("err", err.Error()))
		return nil
	}
	if err != nil {
		m.log.Info("using default layout", slog.String("user", m.userID), slog.String("err", err.Error()))
		return fmt.Errorf("load layout %s: %w", m.userID, err)
	}
	if !snap.Valid() {
		return nil
	}
	m.widgets = slices.Clone(snap.Widgets)
	m.layouts = snap.Layouts.Clone()
	m.log.Debug("layout loaded", slog.String("user", m.userID), slog.Time("savedAt", snap.SavedAt))
	return nil
}

// Reset restores the defaults and deletes the stored snapshot.
func (m *Model) Reset(ctx context.Context) error {
	m.widgets, m.layouts = DefaultWidgets(), DefaultLayouts()
	if err := m.persister.Delete(ctx, m.userID); err != nil {
		return fmt.Errorf("reset layout %s: %w", m.userID, err)
	}
	return nil
}
