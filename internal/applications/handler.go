package applications

// Routes:
//
//	GET    /api/applications/       → list, most recently updated first
//	POST   /api/applications/       → create, 201 with the stored record
//	DELETE /api/applications/{id}/  → 204, or 404 for an unknown id

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"jobmate/tracker/internal/events"
	"jobmate/tracker/internal/metrics"
)

const (
	collectionPath = "/api/applications/"
	maxBodyBytes   = 1 << 20
)

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	repo   Repository
	events events.Publisher
	log    *zap.Logger
}

// NewHandler returns a configured Handler. A nil publisher disables events.
func NewHandler(repo Repository, pub events.Publisher, log *zap.Logger) *Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{repo: repo, events: pub, log: log}
}

// RegisterRoutes mounts the applications routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle(collectionPath, metrics.Instrument("applications", http.HandlerFunc(h.route)))
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.EscapedPath(), collectionPath), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.listApplications(w, r)
		case http.MethodPost:
			h.createApplication(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if strings.Contains(rest, "/") {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	h.deleteApplication(w, r, id)
}

// ─── Individual handlers ─────────────────────────────────────────────────────

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error("list applications", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonWrite(w, http.StatusOK, apps)
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	p, err := DecodeCreate(raw)
	var ve *ValidationError
	if errors.As(err, &ve) {
		for field := range ve.Fields {
			metrics.ValidationFailures.WithLabelValues(field).Inc()
		}
		jsonWrite(w, http.StatusBadRequest, map[string]any{"errors": ve.Fields})
		return
	}
	if err != nil {
		h.log.Error("validate application", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	app, err := h.repo.Create(r.Context(), p)
	if err != nil {
		h.log.Error("create application", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	metrics.ApplicationsCreated.Inc()
	h.log.Info("application created", zap.String("id", string(app.ID)), zap.String("company", app.Company))

	h.events.Publish(r.Context(), events.Event{Type: events.TypeCreated, ApplicationID: string(app.ID)})
	jsonWrite(w, http.StatusCreated, app)
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request, id string) {
	err := h.repo.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		jsonError(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("delete application", zap.String("id", id), zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	metrics.ApplicationsDeleted.Inc()
	h.log.Info("application deleted", zap.String("id", id))

	h.events.Publish(r.Context(), events.Event{Type: events.TypeDeleted, ApplicationID: id})
	w.WriteHeader(http.StatusNoContent)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonWrite(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonWrite(w, code, map[string]string{"error": msg})
}
