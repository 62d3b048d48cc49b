// Package httpapi is the HTTP transport: routing, auth middleware and the
// JSON request/response mapping over the service layer.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/metrics"
	"github.com/runjourney/api/internal/server/geodir"
	"github.com/runjourney/api/internal/server/models"
	"github.com/runjourney/api/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Accounts is the slice of the user service the transport needs.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Profile(ctx context.Context, userID string) (*services.Profile, error)
}

// RunLedger records and removes runs and reports history and statistics.
type RunLedger interface {
	Register(ctx context.Context, userID string, km float64, date *time.Time, note *string) (*models.Run, error)
	Delete(ctx context.Context, runID, userID string) (float64, error)
	History(ctx context.Context, userID string, limit int) ([]*models.Run, error)
	Statistics(ctx context.Context, userID string) (*services.Statistics, error)
}

// CityCatalog lists, searches and assigns origin cities.
type CityCatalog interface {
	ListByState(ctx context.Context, stateCode string) ([]geodir.Municipality, error)
	Search(ctx context.Context, term string) ([]*models.City, error)
	SetOrigin(ctx context.Context, userID, name, stateCode string) (*services.Profile, error)
}

// RouteEstimator computes the route between two catalog cities.
type RouteEstimator interface {
	Estimate(ctx context.Context, originID, destID string) (*services.RouteEstimate, error)
}

type Server struct {
	addr      string
	jwtSecret []byte
	logger    logging.Logger

	accounts Accounts
	ledger   RunLedger
	catalog  CityCatalog
	router   RouteEstimator

	httpServer *http.Server
}

func NewServer(addr string, jwtSecret []byte, a Accounts, r RunLedger, c CityCatalog, re RouteEstimator, l logging.Logger) *Server {
	s := &Server{
		addr:      addr,
		jwtSecret: jwtSecret,
		logger:    l.With("module", "httpapi"),
		accounts:  a,
		ledger:    r,
		catalog:   c,
		router:    re,
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Routes()}
	return s
}

// Routes builds the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/auth/register", withMetrics("auth_register", s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", withMetrics("auth_login", s.handleLogin))
	mux.HandleFunc("GET /api/auth/me", withMetrics("auth_me", s.requireAuth(s.handleMe)))

	mux.HandleFunc("POST /api/runs", withMetrics("runs_register", s.requireAuth(s.handleRegisterRun)))
	mux.HandleFunc("GET /api/runs/history", withMetrics("runs_history", s.requireAuth(s.handleHistory)))
	mux.HandleFunc("GET /api/runs/stats", withMetrics("runs_stats", s.requireAuth(s.handleStatistics)))
	mux.HandleFunc("DELETE /api/runs/{id}", withMetrics("runs_delete", s.requireAuth(s.handleDeleteRun)))

	mux.HandleFunc("GET /api/cities/state/{uf}", withMetrics("cities_state", s.handleListByState))
	mux.HandleFunc("GET /api/cities/search", withMetrics("cities_search", s.handleSearch))
	mux.HandleFunc("POST /api/cities/origin", withMetrics("cities_origin", s.requireAuth(s.handleSetOrigin)))

	mux.HandleFunc("GET /api/routes/{originID}/{destID}", withMetrics("routes_estimate", s.requireAuth(s.handleRoute)))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}
