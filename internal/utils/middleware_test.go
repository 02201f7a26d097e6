package utils

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, r *http.Request) { w.Write([]byte(Subject(r.Context()))) }

func sign(t *testing.T, secret []byte, m jwt.SigningMethod, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(m, jwt.MapClaims{"sub": sub, "exp": time.Now().Add(time.Hour).Unix()}).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func TestBearerAuthAnyToken(t *testing.T) {
	h := BearerAuth(nil)(http.HandlerFunc(ok))
	cases := map[string]int{
		"":              401,
		"Bearer":        401,
		"Bearer   ":     401,
		"Basic abc":     401,
		"Bearer anon":   200,
		"bearer abc123": 200,
	}
	for header, want := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, header)
		if want == 401 {
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		}
	}
}

func TestBearerAuthJWT(t *testing.T) {
	secret := []byte("s3cret")
	h := BearerAuth(secret)(http.HandlerFunc(ok))

	do := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(sign(t, secret, jwt.SigningMethodHS256, "ana"))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "ana", rec.Body.String())

	assert.Equal(t, 401, do(sign(t, []byte("other"), jwt.SigningMethodHS256, "ana")).Code)
	assert.Equal(t, 401, do(sign(t, secret, jwt.SigningMethodHS512, "ana")).Code)
	assert.Equal(t, 401, do("not-a-jwt").Code)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}).SignedString(secret)
	require.NoError(t, err)
	assert.Equal(t, 401, do(expired).Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RID(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"status":418`)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "given")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get("X-Request-ID"))
	assert.Empty(t, RID(context.Background()))
}

type recorded struct {
	method, route string
	status        int
}

type fakeRecorder struct{ got []recorded }

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, recorded{method, route, status})
}

func TestInstrumentUsesRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	r := chi.NewRouter()
	r.Use(Instrument(rec))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {})

	for _, p := range []string{"/items/1", "/items/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", p, nil))
	}
	require.Len(t, rec.got, 3)
	assert.Equal(t, recorded{"GET", "/items/{id}", 200}, rec.got[0])
	assert.Equal(t, "/items/{id}", rec.got[1].route)
	assert.Equal(t, 404, rec.got[2].status)
}

func TestBackoff(t *testing.T) {
	calls := 0
	err := NewBackoff(time.Millisecond, 3).Do(context.Background(), func(i int) error {
		calls++
		if i < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = NewBackoff(time.Millisecond, 1).Do(context.Background(), func(int) error { calls++; return errors.New("down") })
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewBackoff(time.Hour, 5).Do(ctx, func(int) error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}
