package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	"github.com/KirkDiggler/rpg-sheets/internal/orchestrators/sheet"
	"github.com/KirkDiggler/rpg-sheets/internal/repositories/roster"
	sheetstate "github.com/KirkDiggler/rpg-sheets/internal/repositories/sheet_state"
	"github.com/KirkDiggler/rpg-sheets/internal/store"
)

func tablePath(table, id string) string {
	return "/tables/" + table + "/characters/" + id
}

// sessionID keys a character's state within a table
func sessionID(table, id string) string {
	return table + ":" + id
}

// handleShare copies the state in the request query to a new table and
// redirects to it.
func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if _, err := h.roster.Get(ctx, roster.GetInput{ID: id}); err != nil {
		h.renderError(w, r, err)
		return
	}

	table := h.idGen.Generate()
	backend, err := h.tables(ctx, sessionID(table, id))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer closeBackend(backend)

	// the first history entry is the state at share time, so undo can return to it
	if err := backend.Commit(ctx, r.URL.Query()); err != nil {
		h.renderError(w, r, err)
		return
	}

	slog.Info("Shared sheet", "character_id", id, "table", table)

	http.Redirect(w, r, tablePath(table, id), http.StatusSeeOther)
}

func (h *Handler) handleTableSheet(w http.ResponseWriter, r *http.Request) {
	table, id := r.PathValue("table"), r.PathValue("id")

	s, backend, err := h.tableStore(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer closeBackend(backend)
	defer s.Close()

	out, err := h.sheets.GetSheet(r.Context(), &sheet.GetSheetInput{CharacterID: id, Store: s})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	path := tablePath(table, id)
	links := sheetLinks{
		Action: path,
		Roll:   path + "/attacks/",
		Undo:   path + "/undo",
		Events: path + "/events",
	}
	render(w, r, http.StatusOK, layout(out.Sheet.Character.Name, sheetPage(out.Sheet, links)))
}

func (h *Handler) handleTableAction(w http.ResponseWriter, r *http.Request) {
	s, backend, err := h.tableStore(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer closeBackend(backend)
	defer s.Close()

	if err := h.apply(r, s); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, tablePath(r.PathValue("table"), r.PathValue("id")), http.StatusSeeOther)
}

func (h *Handler) handleTableRoll(w http.ResponseWriter, r *http.Request) {
	s, backend, err := h.tableStore(r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	defer closeBackend(backend)
	defer s.Close()

	h.roll(w, r, s)
}

// handleTableUndo steps the table back one commit
func (h *Handler) handleTableUndo(w http.ResponseWriter, r *http.Request) {
	table, id := r.PathValue("table"), r.PathValue("id")

	backend, err := h.tables(r.Context(), sessionID(table, id))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer closeBackend(backend)

	moved, err := backend.Back(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if !moved {
		h.renderError(w, r, errors.FailedPrecondition("nothing to undo"))
		return
	}

	http.Redirect(w, r, tablePath(table, id), http.StatusSeeOther)
}

// handleTableEvents streams a server-sent event with the new query every
// time anyone at the table changes the sheet.
func (h *Handler) handleTableEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.renderError(w, r, errors.Internal("streaming unsupported"))
		return
	}

	backend, err := h.tables(ctx, sessionID(r.PathValue("table"), r.PathValue("id")))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer closeBackend(backend)

	changed := make(chan struct{}, 1)
	unsubscribe := backend.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			values, err := backend.Load(ctx)
			if err != nil {
				slog.Error("Failed to load table state", "path", r.URL.Path, "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", values.Encode()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// tableStore opens the table backend named by the request path and a store
// over it. The caller closes both.
func (h *Handler) tableStore(r *http.Request) (*store.Store, sheetstate.Backend, error) {
	backend, err := h.tables(r.Context(), sessionID(r.PathValue("table"), r.PathValue("id")))
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(&store.Config{Backend: backend})
	if err != nil {
		closeBackend(backend)
		return nil, nil, err
	}
	return s, backend, nil
}

func closeBackend(b sheetstate.Backend) {
	if err := b.Close(); err != nil {
		slog.Error("Failed to close table backend", "error", err)
	}
}
