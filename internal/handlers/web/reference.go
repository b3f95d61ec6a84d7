package web

import (
	"net/http"
)

func (h *Handler) handleClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.reference.ListClasses(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, layout("Classes", classList(classes)))
}

func (h *Handler) handleClass(w http.ResponseWriter, r *http.Request) {
	class, err := h.reference.GetClass(r.Context(), r.PathValue("key"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, layout(class.Name, classDetail(class)))
}

func (h *Handler) handleFeature(w http.ResponseWriter, r *http.Request) {
	feature, err := h.reference.GetFeature(r.Context(), r.PathValue("key"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, layout(feature.Name, featureDetail(feature)))
}
