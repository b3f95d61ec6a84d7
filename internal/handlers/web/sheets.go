package web

import (
	"net/http"
	"strconv"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	"github.com/KirkDiggler/rpg-sheets/internal/orchestrators/sheet"
	"github.com/KirkDiggler/rpg-sheets/internal/store"
)

// sheetLinks are the URLs a rendered sheet points its controls at
type sheetLinks struct {
	// Action receives the action forms
	Action string
	// Roll is the damage roll endpoint prefix, without the attack index
	Roll string
	// Query is appended to roll links so they see the same state
	Query string
	// Share is set when the sheet can be moved to a shared table
	Share string
	// Undo is set on shared tables
	Undo string
	// Events is set on shared tables
	Events string
}

func (h *Handler) handleSheet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s, history, err := queryStore(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer s.Close()

	out, err := h.sheets.GetSheet(r.Context(), &sheet.GetSheetInput{CharacterID: id, Store: s})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	links := sheetLinks{
		Action: history.Location(),
		Roll:   "/characters/" + id + "/attacks/",
		Query:  history.RawQuery(),
	}
	if h.tables != nil {
		links.Share = "/characters/" + id + "/share?" + history.RawQuery()
	}
	render(w, r, http.StatusOK, layout(out.Sheet.Character.Name, sheetPage(out.Sheet, links)))
}

// handleAction applies the posted action to the state in the request query
// and redirects to the resulting URL.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	s, history, err := queryStore(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer s.Close()

	if err := h.apply(r, s); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, history.Location(), http.StatusSeeOther)
}

func (h *Handler) handleRoll(w http.ResponseWriter, r *http.Request) {
	s, _, err := queryStore(r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	defer s.Close()

	h.roll(w, r, s)
}

func (h *Handler) roll(w http.ResponseWriter, r *http.Request, s *store.Store) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSONError(w, r, errors.InvalidArgumentf("invalid attack index %q", r.PathValue("index")))
		return
	}

	crit, err := boolParam(r.URL.Query().Get("crit"))
	if err != nil {
		writeJSONError(w, r, err)
		return
	}

	out, err := h.sheets.RollDamage(r.Context(), &sheet.RollDamageInput{
		CharacterID: r.PathValue("id"),
		Store:       s,
		AttackIndex: index,
		Crit:        crit,
	})
	if err != nil {
		writeJSONError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newRollResponse(out))
}

// rollResponse is the JSON body of a damage roll
type rollResponse struct {
	Attack     string      `json:"attack"`
	Notation   string      `json:"notation"`
	DamageType string      `json:"damage_type,omitempty"`
	Mode       string      `json:"mode"`
	Dice       []termRolls `json:"dice,omitempty"`
	Modifier   int         `json:"modifier"`
	Total      int         `json:"total"`
}

type termRolls struct {
	Faces   int   `json:"faces"`
	Results []int `json:"results"`
}

func newRollResponse(out *sheet.RollDamageOutput) rollResponse {
	resp := rollResponse{
		Attack:     out.Attack.Name,
		Notation:   out.Damage.String(),
		DamageType: out.Attack.DamageType,
		Mode:       string(out.Mode),
		Modifier:   out.Damage.Modifier(),
		Total:      out.Total,
	}
	if out.Roll != nil {
		for _, t := range out.Roll.Rolls {
			resp.Dice = append(resp.Dice, termRolls{Faces: t.Faces, Results: t.Results})
		}
	}
	return resp
}

// apply reads the action form and runs it against s
func (h *Handler) apply(r *http.Request, s *store.Store) error {
	input, err := actionInput(r)
	if err != nil {
		return err
	}
	input.Store = s

	_, err = h.sheets.ApplyAction(r.Context(), input)
	return err
}

// actionInput reads an action from the posted form. Only the body is
// consulted so state keys in the query can't be mistaken for action fields.
func actionInput(r *http.Request) (*sheet.ApplyActionInput, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.InvalidArgument("invalid form")
	}
	form := r.PostForm

	input := &sheet.ApplyActionInput{
		CharacterID: r.PathValue("id"),
		Action:      sheet.Action(form.Get("action")),
		Resource:    form.Get("resource"),
		RollMode:    sheet.RollMode(form.Get("roll_mode")),
	}

	fields := []struct {
		name string
		dst  *int
	}{
		{"amount", &input.Amount},
		{"index", &input.Index},
		{"level", &input.Level},
		{"faces", &input.Faces},
	}
	for _, f := range fields {
		raw := form.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.InvalidArgumentf("%s must be a number", f.name).WithMeta("field", f.name)
		}
		*f.dst = n
	}

	return input, nil
}

// queryStore builds a store over a history seeded from the request URL
func queryStore(r *http.Request) (*store.Store, *store.History, error) {
	history, err := store.NewHistory(r.URL.RequestURI())
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(&store.Config{Backend: history})
	if err != nil {
		return nil, nil, err
	}
	return s, history, nil
}

func boolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidArgumentf("invalid boolean %q", raw)
	}
	return b, nil
}
