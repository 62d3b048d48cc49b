package httpapi

import (
	"net/http"

	"github.com/runjourney/api/internal/common"
)

type originRequest struct {
	City  string `json:"city"`
	State string `json:"state"`
}

func (s *Server) handleListByState(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListByState(r.Context(), r.PathValue("uf"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	cities, err := s.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

func (s *Server) handleSetOrigin(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	var req originRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := s.catalog.SetOrigin(r.Context(), userID, req.City, req.State)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
