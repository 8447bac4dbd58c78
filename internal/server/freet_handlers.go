package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createFreetRequest struct {
	Content string `json:"content"`
}

// handleCreateFreet posts a new freet by the caller.
// POST /api/freets
func (s *Server) handleCreateFreet(w http.ResponseWriter, r *http.Request) {
	var req createFreetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	freet, err := s.freets.Create(r.Context(), callerFrom(r), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.freetResponseFor(r.Context(), freet)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleGetFreet returns a freet by id.
// GET /api/freets/{freetID}
func (s *Server) handleGetFreet(w http.ResponseWriter, r *http.Request) {
	freet, err := s.freets.Get(r.Context(), chi.URLParam(r, "freetID"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.freetResponseFor(r.Context(), freet)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteFreet deletes the caller's own freet.
// DELETE /api/freets/{freetID}
func (s *Server) handleDeleteFreet(w http.ResponseWriter, r *http.Request) {
	if err := s.freets.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "freetID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your freet was deleted successfully."})
}
