package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/runjourney/api/internal/common"
)

type runRequest struct {
	Km   float64    `json:"km"`
	Date *time.Time `json:"date"`
	Note *string    `json:"note"`
}

type deleteRunResponse struct {
	Deleted bool    `json:"deleted"`
	TotalKm float64 `json:"totalKm"`
}

func (s *Server) handleRegisterRun(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	var req runRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	run, err := s.ledger.Register(r.Context(), userID, req.Km, req.Date, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	total, err := s.ledger.Delete(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteRunResponse{Deleted: true, TotalKm: total})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, common.ErrValidation)
			return
		}
		limit = n
	}

	history, err := s.ledger.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	stats, err := s.ledger.Statistics(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
