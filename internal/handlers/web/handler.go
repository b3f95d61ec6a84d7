// Package web serves the character sheets as HTML pages. Play state is read
// from and written to the request query, or to a shared table in redis.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/KirkDiggler/rpg-sheets/internal/clients/external"
	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	"github.com/KirkDiggler/rpg-sheets/internal/orchestrators/sheet"
	"github.com/KirkDiggler/rpg-sheets/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-sheets/internal/repositories/roster"
	sheetstate "github.com/KirkDiggler/rpg-sheets/internal/repositories/sheet_state"
)

// TableBackendFunc opens the shared state of one table session
type TableBackendFunc func(ctx context.Context, sessionID string) (sheetstate.Backend, error)

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	Sheets    sheet.Service
	Roster    roster.Repository
	Reference external.Client

	// Tables enables the shared table routes when set
	Tables      TableBackendFunc
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Sheets == nil {
		vb.RequiredField("Sheets")
	}
	if c.Roster == nil {
		vb.RequiredField("Roster")
	}
	if c.Reference == nil {
		vb.RequiredField("Reference")
	}
	if c.Tables != nil && c.IDGenerator == nil {
		vb.Field("IDGenerator", "is required with Tables")
	}

	return vb.Build()
}

// Handler serves the sheet pages
type Handler struct {
	sheets    sheet.Service
	roster    roster.Repository
	reference external.Client
	tables    TableBackendFunc
	idGen     idgen.Generator
}

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		sheets:    cfg.Sheets,
		roster:    cfg.Roster,
		reference: cfg.Reference,
		tables:    cfg.Tables,
		idGen:     cfg.IDGenerator,
	}, nil
}

// Routes returns the mux with every page registered
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /characters/{id}", h.handleSheet)
	mux.HandleFunc("POST /characters/{id}", h.handleAction)
	mux.HandleFunc("GET /characters/{id}/attacks/{index}/roll", h.handleRoll)

	mux.HandleFunc("GET /reference/classes", h.handleClasses)
	mux.HandleFunc("GET /reference/classes/{key}", h.handleClass)
	mux.HandleFunc("GET /reference/features/{key}", h.handleFeature)

	if h.tables != nil {
		mux.HandleFunc("POST /characters/{id}/share", h.handleShare)
		mux.HandleFunc("GET /tables/{table}/characters/{id}", h.handleTableSheet)
		mux.HandleFunc("POST /tables/{table}/characters/{id}", h.handleTableAction)
		mux.HandleFunc("GET /tables/{table}/characters/{id}/attacks/{index}/roll", h.handleTableRoll)
		mux.HandleFunc("POST /tables/{table}/characters/{id}/undo", h.handleTableUndo)
		mux.HandleFunc("GET /tables/{table}/characters/{id}/events", h.handleTableEvents)
	}

	return mux
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	out, err := h.roster.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, layout("Characters", rosterList(out.Characters)))
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logError(r, status, err)
	render(w, r, status, layout(http.StatusText(status), errorMessage(errors.GetMessage(err))))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logError(r, status, err)
	writeJSON(w, status, map[string]any{
		"code":    errors.GetCode(err),
		"message": errors.GetMessage(err),
	})
}

func statusFor(err error) int {
	return errors.GetCode(err).HTTPStatus()
}

func logError(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
		return
	}
	slog.Info("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
}
