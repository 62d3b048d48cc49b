package httpapi

import (
	"net/http"
)

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	estimate, err := s.router.Estimate(r.Context(), r.PathValue("originID"), r.PathValue("destID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}
