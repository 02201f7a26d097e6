package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AngelCh415/zenite-dash/internal/builder"
)

const layoutKeyPrefix = "dash-builder-layout:"

func layoutKey(userID string) string {
	if userID == "" {
		userID = builder.DefaultUserID
	}
	return layoutKeyPrefix + userID
}

// StoredLayout is one entry of List.
type StoredLayout struct {
	Index  int    `json:"index"`
	UserID string `json:"userId"`
	builder.Snapshot
}

// LayoutRepository keeps one builder snapshot per user. Writes are last-write-wins.
type LayoutRepository struct {
	kv  KV
	now func() time.Time
}

func NewLayoutRepository(kv KV) *LayoutRepository {
	return &LayoutRepository{kv: kv, now: time.Now}
}

// WithClock sets the source of savedAt timestamps.
func (r *LayoutRepository) WithClock(now func() time.Time) *LayoutRepository {
	r.now = now
	return r
}

// Load returns nil, nil when the user has no stored layout. A value that is not a
// snapshot yields an error wrapping builder.ErrMalformedSnapshot.
func (r *LayoutRepository) Load(ctx context.Context, userID string) (*builder.Snapshot, error) {
	b, err := r.kv.Get(ctx, layoutKey(userID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", layoutKey(userID), err)
	}
	var s builder.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", layoutKey(userID), builder.ErrMalformedSnapshot, err)
	}
	return &s, nil
}

// Save stamps the snapshot with the current time and stores it.
func (r *LayoutRepository) Save(ctx context.Context, userID string, s builder.Snapshot) (time.Time, error) {
	s.SavedAt = r.now().UTC()
	if s.Widgets == nil {
		s.Widgets = []builder.Widget{}
	}
	if s.Layouts.LG == nil {
		s.Layouts.LG = []builder.LayoutEntry{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return time.Time{}, err
	}
	if err := r.kv.Set(ctx, layoutKey(userID), b); err != nil {
		return time.Time{}, fmt.Errorf("set %s: %w", layoutKey(userID), err)
	}
	return s.SavedAt, nil
}

func (r *LayoutRepository) Delete(ctx context.Context, userID string) error {
	if err := r.kv.Delete(ctx, layoutKey(userID)); err != nil {
		return fmt.Errorf("delete %s: %w", layoutKey(userID), err)
	}
	return nil
}

// List returns every stored layout in key order. Entries that fail to decode are skipped.
func (r *LayoutRepository) List(ctx context.Context) ([]StoredLayout, error) {
	pairs, err := r.kv.GetByPrefix(ctx, layoutKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	out := make([]StoredLayout, 0, len(pairs))
	for _, p := range pairs {
		var s builder.Snapshot
		if json.Unmarshal(p.Value, &s) != nil {
			continue
		}
		out = append(out, StoredLayout{
			Index:    len(out),
			UserID:   strings.TrimPrefix(p.Key, layoutKeyPrefix),
			Snapshot: s,
		})
	}
	return out, nil
}
