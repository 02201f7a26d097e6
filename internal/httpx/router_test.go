package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/zenite-dash/internal/builder"
	"github.com/AngelCh415/zenite-dash/internal/crm"
	"github.com/AngelCh415/zenite-dash/internal/dashclient"
	"github.com/AngelCh415/zenite-dash/internal/metrics"
	"github.com/AngelCh415/zenite-dash/internal/models"
	"github.com/AngelCh415/zenite-dash/internal/store"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type fakeData struct {
	data *models.DashData
	err  error
}

func (f *fakeData) Build(context.Context) (*models.DashData, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.data
	return &cp, nil
}

func (f *fakeData) Collection(_ context.Context, name string) (any, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	if name == crm.CollectionLeads {
		rows := []models.LeadRow{{ID: "l1"}, {ID: "l2"}, {ID: "l3"}}
		return rows, len(rows), nil
	}
	var rows []models.ContactRow
	return rows, 0, nil
}

type brokenLayouts struct{}

func (brokenLayouts) Load(context.Context, string) (*builder.Snapshot, error) {
	return nil, errors.New("kv down")
}
func (brokenLayouts) Save(context.Context, string, builder.Snapshot) (time.Time, error) {
	return time.Time{}, errors.New("kv down")
}
func (brokenLayouts) Delete(context.Context, string) error { return errors.New("kv down") }
func (brokenLayouts) List(context.Context) ([]store.StoredLayout, error) {
	return nil, errors.New("kv down")
}

func sampleData() *models.DashData {
	return &models.DashData{
		Leads: []models.Lead{
			{ID: "l1", Owner: "Ana", Source: "Site", CreatedAt: "2026-10-10"},
			{ID: "l2", Owner: "Bruno", Source: "Evento", CreatedAt: "2025-01-10"},
		},
		Opportunities: []models.Opportunity{{ID: "o1", Owner: "Ana", Stage: "Proposta"}},
		Reports:       []models.Report{},
		Meta:          models.Meta{TotalLeads: 2, TotalOpportunities: 1},
	}
}

func newTestServer(t *testing.T, data DataService, layouts LayoutStore) *httptest.Server {
	t.Helper()
	h := NewRouter(Deps{
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Data:    data,
		Layouts: layouts,
		Metrics: metrics.NewCollector(),
		Now:     func() time.Time { return now },
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url, body string, auth bool) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if auth {
		req.Header.Set("Authorization", "Bearer anon")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, &fakeData{data: sampleData()}, store.NewLayoutRepository(store.NewMemoryKV()))
	code, body := call(t, "GET", srv.URL+"/health", "", false)
	assert.Equal(t, 401, code)
	assert.Equal(t, "unauthorized", body["error"])

	code, body = call(t, "GET", srv.URL+"/health", "", true)
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeData{data: sampleData()}, store.NewLayoutRepository(store.NewMemoryKV()))
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/dash/data", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", resp.Header.Get("Access-Control-Max-Age"))
}

func TestDashData(t *testing.T) {
	srv := newTestServer(t, &fakeData{data: sampleData()}, store.NewLayoutRepository(store.NewMemoryKV()))

	code, body := call(t, "GET", srv.URL+"/dash/data", "", true)
	require.Equal(t, 200, code)
	assert.Len(t, body["leads"], 2)
	assert.Equal(t, []any{}, body["reports"])

	code, body = call(t, "GET", srv.URL+"/dash/data?owner=Ana", "", true)
	require.Equal(t, 200, code)
	assert.Len(t, body["leads"], 1)
	assert.Len(t, body["opportunities"], 1)

	code, body = call(t, "GET", srv.URL+"/dash/data?period=30d", "", true)
	require.Equal(t, 200, code)
	assert.Len(t, body["leads"], 1)

	code, body = call(t, "GET", srv.URL+"/dash/data?from=2025-01-01&to=2025-01-31", "", true)
	require.Equal(t, 200, code)
	assert.Len(t, body["leads"], 1)

	code, _ = call(t, "GET", srv.URL+"/dash/data?period=2w", "", true)
	assert.Equal(t, 400, code)
	code, _ = call(t, "GET", srv.URL+"/dash/data?cross=stage", "", true)
	assert.Equal(t, 400, code)
}

func TestDashDataFailure(t *testing.T) {
	srv := newTestServer(t, &fakeData{err: errors.New("derive dashboard: boom")}, store.NewLayoutRepository(store.NewMemoryKV()))
	code, body := call(t, "GET", srv.URL+"/dash/data", "", true)
	assert.Equal(t, 500, code)
	assert.Equal(t, "Failed to fetch CRM data: derive dashboard: boom", body["error"])

	code, body = call(t, "GET", srv.URL+"/dash/leads", "", true)
	assert.Equal(t, 500, code)
	assert.Equal(t, "derive dashboard: boom", body["error"])
}

func TestCollections(t *testing.T) {
	srv := newTestServer(t, &fakeData{data: sampleData()}, store.NewLayoutRepository(store.NewMemoryKV()))

	code, body := call(t, "GET", srv.URL+"/dash/leads", "", true)
	require.Equal(t, 200, code)
	assert.Len(t, body["data"], 3)
	assert.Equal(t, 3.0, body["count"])

	_, body = call(t, "GET", srv.URL+"/dash/leads?limit=1&offset=1", "", true)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "l2", data[0].(map[string]any)["id"])
	assert.Equal(t, 3.0, body["count"])

	code, body = call(t, "GET", srv.URL+"/dash/leads?limit=9223372036854775807&offset=1", "", true)
	require.Equal(t, 200, code)
	assert.Len(t, body["data"], 2)
	assert.Equal(t, 3.0, body["count"])

	_, body = call(t, "GET", srv.URL+"/dash/leads?limit=5&offset=9223372036854775807", "", true)
	assert.Equal(t, []any{}, body["data"])

	code, body = call(t, "GET", srv.URL+"/dash/contacts", "", true)
	require.Equal(t, 200, code)
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, 0.0, body["count"])
}

func TestLayoutEndpoints(t *testing.T) {
	srv := newTestServer(t, &fakeData{data: sampleData()}, store.NewLayoutRepository(store.NewMemoryKV()))

	code, body := call(t, "GET", srv.URL+"/dash/builder/layout", "", true)
	require.Equal(t, 200, code)
	assert.Contains(t, body, "layout")
	assert.Nil(t, body["layout"])

	code, body = call(t, "POST", srv.URL+"/dash/builder/layout",
		`{"userId":"ana","widgets":[{"id":"w1","type":"kpi-leads","title":"Leads"}],"layouts":{"lg":[{"i":"w1","x":0,"y":0,"w":3,"h":2}]}}`, true)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["success"])
	_, err := time.Parse(time.RFC3339, body["savedAt"].(string))
	assert.NoError(t, err)

	code, body = call(t, "GET", srv.URL+"/dash/builder/layout?userId=ana", "", true)
	require.Equal(t, 200, code)
	layout := body["layout"].(map[string]any)
	assert.Len(t, layout["widgets"], 1)

	code, body = call(t, "GET", srv.URL+"/dash/builder/layouts", "", true)
	require.Equal(t, 200, code)
	list := body["layouts"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, 0.0, list[0].(map[string]any)["index"])
	assert.Equal(t, "ana", list[0].(map[string]any)["userId"])

	code, body = call(t, "DELETE", srv.URL+"/dash/builder/layout?userId=ana", "", true)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["success"])

	_, body = call(t, "GET", srv.URL+"/dash/builder/layout?userId=ana", "", true)
	assert.Nil(t, body["layout"])

	code, _ = call(t, "POST", srv.URL+"/dash/builder/layout", `{"widgets":`, true)
	assert.Equal(t, 400, code)

	code, body = call(t, "GET", srv.URL+"/dash/builder/catalog?q=tabela", "", true)
	require.Equal(t, 200, code)
	assert.Len(t, body["catalog"], 3)
	assert.Len(t, body["categories"], 5)
}

func TestMalformedStoredLayoutReadsAsAbsent(t *testing.T) {
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), "dash-builder-layout:u1", []byte("{not json")))
	srv := newTestServer(t, &fakeData{data: sampleData()}, store.NewLayoutRepository(kv))

	code, body := call(t, "GET", srv.URL+"/dash/builder/layout?userId=u1", "", true)
	require.Equal(t, 200, code)
	assert.Contains(t, body, "layout")
	assert.Nil(t, body["layout"])
}

func TestPaginateBounds(t *testing.T) {
	rows := []int{1, 2, 3}
	limit, offset := clampLimitOffset(math.MaxInt, 1, len(rows))
	assert.Equal(t, []int{2, 3}, paginate(rows, limit, offset))
	assert.Equal(t, []int{2, 3}, paginate(rows, math.MaxInt, 1))
	limit, offset = clampLimitOffset(0, -4, len(rows))
	assert.Equal(t, rows, paginate(rows, limit, offset))
	limit, offset = clampLimitOffset(2, 10, len(rows))
	assert.Equal(t, []int{}, paginate(rows, limit, offset))
}

func TestLayoutEndpointsFailure(t *testing.T) {
	srv := newTestServer(t, &fakeData{data: sampleData()}, brokenLayouts{})
	cases := []struct{ method, path, body, msg string }{
		{"GET", "/dash/builder/layout", "", "Failed to load layout: kv down"},
		{"POST", "/dash/builder/layout", `{"widgets":[],"layouts":{}}`, "Failed to save layout: kv down"},
		{"DELETE", "/dash/builder/layout", "", "Failed to delete layout: kv down"},
		{"GET", "/dash/builder/layouts", "", "Failed to list layouts: kv down"},
	}
	for _, c := range cases {
		code, body := call(t, c.method, srv.URL+c.path, c.body, true)
		assert.Equal(t, 500, code, c.path)
		assert.Equal(t, c.msg, body["error"])
	}
}

func TestBuilderModelOverHTTP(t *testing.T) {
	srv := newTestServer(t, &fakeData{data: sampleData()}, store.NewLayoutRepository(store.NewMemoryKV()))
	client := dashclient.New(srv.URL, "anon", nil)
	ctx := context.Background()

	m := builder.New(client, "carla")
	require.NoError(t, m.Load(ctx))
	assert.Equal(t, builder.DefaultWidgets(), m.Widgets())

	w, err := m.AddWidget(builder.ChartActivitiesBar)
	require.NoError(t, err)
	savedAt, err := m.Save(ctx)
	require.NoError(t, err)
	assert.False(t, savedAt.IsZero())

	again := builder.New(client, "carla")
	require.NoError(t, again.Load(ctx))
	assert.Contains(t, again.Widgets(), w)
	assert.Equal(t, m.Layouts(), again.Layouts())

	list, err := client.Layouts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, again.Reset(ctx))
	snap, err := client.Load(ctx, "carla")
	require.NoError(t, err)
	assert.Nil(t, snap)

	d, err := client.Data(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Meta.TotalLeads)
}
