package httpx

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/zenite-dash/internal/filter"
	"github.com/AngelCh415/zenite-dash/internal/models"
)

var filterParams = []string{"period", "from", "to", "owner", "stage", "source", "segment", "cross"}

// stateFromQuery builds a filter state from /dash/data query parameters. It returns nil when
// no filter parameter is present, so the unfiltered payload is served unchanged.
func stateFromQuery(v url.Values, now time.Time) (*filter.State, error) {
	present := false
	for _, p := range filterParams {
		if v.Get(p) != "" {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}
	st := filter.New(now)
	if p := v.Get("period"); p != "" {
		period, err := filter.ParsePeriod(p)
		if err != nil {
			return nil, err
		}
		st = st.SetPeriod(period, now)
	}
	if v.Get("from") != "" || v.Get("to") != "" {
		from, err1 := time.ParseInLocation(time.DateOnly, v.Get("from"), now.Location())
		to, err2 := time.ParseInLocation(time.DateOnly, v.Get("to"), now.Location())
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("from/to must both be YYYY-MM-DD: %w", err)
		}
		st = st.SetDateRange(from, to.Add(24*time.Hour-time.Second))
	}
	for _, o := range csvList(v.Get("owner")) {
		st = st.ToggleOwner(o)
	}
	for _, s := range csvList(v.Get("stage")) {
		st = st.ToggleStage(s)
	}
	for _, s := range csvList(v.Get("source")) {
		st = st.ToggleSource(s)
	}
	for _, s := range csvList(v.Get("segment")) {
		st = st.ToggleSegment(s)
	}
	if c := v.Get("cross"); c != "" {
		dim, val, ok := strings.Cut(c, ":")
		if !ok || dim == "" {
			return nil, fmt.Errorf("cross must be dimension:value, got %q", c)
		}
		st = st.SetCrossFilter(dim, val)
	}
	return &st, nil
}

// csvList splits a comma list, dropping blanks and repeats.
func csvList(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if _, dup := seen[p]; p == "" || dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func pageRows(rows any, limit, offset int) any {
	switch r := rows.(type) {
	case []models.LeadRow:
		return paginate(r, limit, offset)
	case []models.OpportunityRow:
		return paginate(r, limit, offset)
	case []models.ActivityRow:
		return paginate(r, limit, offset)
	case []models.AccountRow:
		return paginate(r, limit, offset)
	case []models.ContactRow:
		return paginate(r, limit, offset)
	}
	return rows
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if limit < end-offset {
		end = offset + limit
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

// clampLimitOffset: limit <= 0 means every row; both values end up within [0, n].
func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
