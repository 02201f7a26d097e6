package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/AngelCh415/zenite-dash/internal/builder"
	"github.com/AngelCh415/zenite-dash/internal/crm"
	"github.com/AngelCh415/zenite-dash/internal/filter"
	"github.com/AngelCh415/zenite-dash/internal/models"
	"github.com/AngelCh415/zenite-dash/internal/store"
	"github.com/AngelCh415/zenite-dash/internal/utils"
)

// DataService builds the dashboard payload and serves raw collections.
type DataService interface {
	Build(ctx context.Context) (*models.DashData, error)
	Collection(ctx context.Context, name string) (any, int, error)
}

// LayoutStore is the layout persistence used by the builder endpoints.
type LayoutStore interface {
	builder.Persister
	List(ctx context.Context) ([]store.StoredLayout, error)
}

// Metrics is what the router reports to.
type Metrics interface {
	utils.RequestRecorder
	RecordLayoutOp(op string, err error)
	Handler() http.Handler
}

type Deps struct {
	Log         *slog.Logger
	Data        DataService
	Layouts     LayoutStore
	Metrics     Metrics
	JWTSecret   string
	CORSOrigins []string
	// Now anchors period filters on /dash/data; defaults to time.Now.
	Now func() time.Time
}

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if len(d.CORSOrigins) == 0 {
		d.CORSOrigins = []string{"*"}
	}
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(utils.Instrument(d.Metrics))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:         600,
	}))

	mux.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	mux.Group(func(r chi.Router) {
		r.Use(utils.BearerAuth([]byte(d.JWTSecret)))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/dash/data", func(w http.ResponseWriter, r *http.Request) {
			st, err := stateFromQuery(r.URL.Query(), d.Now())
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			data, err := d.Data.Build(r.Context())
			if err != nil {
				d.Log.Error("dashboard build failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch CRM data: %v", err))
				return
			}
			if st != nil {
				filtered := filter.Apply(*st, *data)
				data = &filtered
			}
			writeJSON(w, http.StatusOK, data)
		})

		for _, name := range crm.Collections {
			r.Get("/dash/"+name, collectionHandler(d, name))
		}

		r.Route("/dash/builder", func(r chi.Router) {
			r.Get("/layout", getLayout(d))
			r.Post("/layout", saveLayout(d))
			r.Delete("/layout", deleteLayout(d))
			r.Get("/layouts", listLayouts(d))
			r.Get("/catalog", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{
					"catalog":    builder.SearchCatalog(r.URL.Query().Get("q")),
					"categories": builder.Categories(),
				})
			})
		})
	})
	return mux
}

func collectionHandler(d Deps, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, n, err := d.Data.Collection(r.Context(), name)
		if err != nil {
			d.Log.Error("collection fetch failed", slog.String("collection", name), slog.String("err", err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		q := r.URL.Query()
		limit, offset := clampLimitOffset(atoiDef(q.Get("limit"), 0), atoiDef(q.Get("offset"), 0), n)
		writeJSON(w, http.StatusOK, map[string]any{"data": pageRows(rows, limit, offset), "count": n})
	}
}

func userID(r *http.Request) string {
	if u := r.URL.Query().Get("userId"); u != "" {
		return u
	}
	return builder.DefaultUserID
}

func getLayout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Layouts.Load(r.Context(), userID(r))
		if errors.Is(err, builder.ErrMalformedSnapshot) {
			d.Log.Warn("stored layout unreadable, serving none", slog.String("user", userID(r)), slog.String("err", err.Error()))
			snap, err = nil, nil
		}
		d.Metrics.RecordLayoutOp("load", err)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load layout: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"layout": snap})
	}
}

type saveBody struct {
	UserID  string           `json:"userId"`
	Widgets []builder.Widget `json:"widgets"`
	Layouts builder.Layouts  `json:"layouts"`
}

func saveLayout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body saveBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
			return
		}
		if body.UserID == "" {
			body.UserID = builder.DefaultUserID
		}
		savedAt, err := d.Layouts.Save(r.Context(), body.UserID, builder.Snapshot{Widgets: body.Widgets, Layouts: body.Layouts})
		d.Metrics.RecordLayoutOp("save", err)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save layout: %v", err))
			return
		}
		d.Log.Info("layout saved", slog.String("user", body.UserID), slog.Int("widgets", len(body.Widgets)))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "savedAt": savedAt})
	}
}

func deleteLayout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Layouts.Delete(r.Context(), userID(r))
		d.Metrics.RecordLayoutOp("delete", err)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete layout: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func listLayouts(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Layouts.List(r.Context())
		d.Metrics.RecordLayoutOp("list", err)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list layouts: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"layouts": list})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
