package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind := core.CategoryKind(r.URL.Query().Get("kind"))

	categories, err := s.svc.ListCategories(r.Context(), s.owner, kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category core.Category
	if err := decodeBody(r, &category); err != nil {
		writeError(w, r, err)
		return
	}
	category.OwnerID = s.owner

	id, err := s.svc.CreateCategory(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category.ID = id
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteCategory(r.Context(), s.owner, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
