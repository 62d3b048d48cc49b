package httpapi

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

type statusResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "running-journey-api",
		"message": "register runs, cross the state",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Service: "running-journey-api",
		Status:  "ok",
		Uptime:  time.Since(startedAt).Round(time.Second).String(),
	})
}
