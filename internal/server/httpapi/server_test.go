package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runjourney/api/internal/common"
	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/server/auth"
	"github.com/runjourney/api/internal/server/geodir"
	"github.com/runjourney/api/internal/server/models"
	"github.com/runjourney/api/internal/server/services"
)

var testSecret = []byte("test-secret")

type fakeAccounts struct {
	result  *services.AuthResult
	profile *services.Profile
	err     error
}

func (f *fakeAccounts) Register(ctx context.Context, name, email, password string) (*services.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAccounts) Profile(ctx context.Context, userID string) (*services.Profile, error) {
	return f.profile, f.err
}

type fakeLedger struct {
	run     *models.Run
	total   float64
	history []*models.Run
	stats   *services.Statistics
	err     error

	gotUserID string
	gotKm     float64
	gotRunID  string
	gotLimit  int
}

func (f *fakeLedger) Register(ctx context.Context, userID string, km float64, date *time.Time, note *string) (*models.Run, error) {
	f.gotUserID, f.gotKm = userID, km
	return f.run, f.err
}

func (f *fakeLedger) Delete(ctx context.Context, runID, userID string) (float64, error) {
	f.gotRunID, f.gotUserID = runID, userID
	return f.total, f.err
}

func (f *fakeLedger) History(ctx context.Context, userID string, limit int) ([]*models.Run, error) {
	f.gotUserID, f.gotLimit = userID, limit
	return f.history, f.err
}

func (f *fakeLedger) Statistics(ctx context.Context, userID string) (*services.Statistics, error) {
	f.gotUserID = userID
	return f.stats, f.err
}

type fakeCatalog struct {
	municipalities []geodir.Municipality
	cities         []*models.City
	profile        *services.Profile
	err            error

	gotState, gotTerm, gotCity string
}

func (f *fakeCatalog) ListByState(ctx context.Context, stateCode string) ([]geodir.Municipality, error) {
	f.gotState = stateCode
	return f.municipalities, f.err
}

func (f *fakeCatalog) Search(ctx context.Context, term string) ([]*models.City, error) {
	f.gotTerm = term
	return f.cities, f.err
}

func (f *fakeCatalog) SetOrigin(ctx context.Context, userID, name, stateCode string) (*services.Profile, error) {
	f.gotCity, f.gotState = name, stateCode
	return f.profile, f.err
}

type fakeEstimator struct {
	estimate *services.RouteEstimate
	err      error
}

func (f *fakeEstimator) Estimate(ctx context.Context, originID, destID string) (*services.RouteEstimate, error) {
	return f.estimate, f.err
}

type serverFixture struct {
	accounts  *fakeAccounts
	ledger    *fakeLedger
	catalog   *fakeCatalog
	estimator *fakeEstimator
	handler   http.Handler
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		accounts:  &fakeAccounts{},
		ledger:    &fakeLedger{},
		catalog:   &fakeCatalog{},
		estimator: &fakeEstimator{},
	}
	s := NewServer(":0", testSecret, f.accounts, f.ledger, f.catalog, f.estimator, logging.Setup("error", "text"))
	f.handler = s.Routes()
	return f
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(f *serverFixture, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	f := newServerFixture()
	f.accounts.result = &services.AuthResult{
		Token: "token",
		User:  &services.UserSummary{ID: "user-1", Name: "Ana", Email: "ana@example.com"},
	}

	rec := doRequest(f, http.MethodPost, "/api/auth/register", "",
		`{"name":"Ana","email":"ana@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got services.AuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "token", got.Token)
	assert.Equal(t, "Ana", got.User.Name)
}

func TestRegisterEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{"invalid body", nil, "{not json", http.StatusBadRequest},
		{"duplicate email", fmt.Errorf("%w: email already registered", common.ErrAlreadyExists), `{}`, http.StatusConflict},
		{"validation", fmt.Errorf("%w: invalid email", common.ErrValidation), `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServerFixture()
			f.accounts.err = tt.err

			rec := doRequest(f, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestLoginEndpointUnauthorized(t *testing.T) {
	f := newServerFixture()
	f.accounts.err = fmt.Errorf("%w: invalid email or password", common.ErrUnauthorized)

	rec := doRequest(f, http.MethodPost, "/api/auth/login", "", `{"email":"a@b.c","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "invalid email or password")
}

func TestMeRequiresToken(t *testing.T) {
	f := newServerFixture()

	rec := doRequest(f, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(f, http.MethodGet, "/api/auth/me", "Bearer bogus", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsProfile(t *testing.T) {
	f := newServerFixture()
	f.accounts.profile = &services.Profile{ID: "user-1", Name: "Ana"}

	rec := doRequest(f, http.MethodGet, "/api/auth/me", bearerFor(t, "user-1"), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var got services.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ana", got.Name)
}

func TestRegisterRunEndpoint(t *testing.T) {
	f := newServerFixture()
	f.ledger.run = &models.Run{ID: "run-1", UserID: "user-1", Km: 12.5}

	rec := doRequest(f, http.MethodPost, "/api/runs", bearerFor(t, "user-1"), `{"km":12.5}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", f.ledger.gotUserID)
	assert.Equal(t, 12.5, f.ledger.gotKm)
}

func TestRegisterRunMissingOrigin(t *testing.T) {
	f := newServerFixture()
	f.ledger.err = common.ErrMissingOrigin

	rec := doRequest(f, http.MethodPost, "/api/runs", bearerFor(t, "user-1"), `{"km":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "origin city not set")
}

func TestDeleteRunEndpoint(t *testing.T) {
	f := newServerFixture()
	f.ledger.total = 30.5

	rec := doRequest(f, http.MethodDelete, "/api/runs/run-1", bearerFor(t, "user-1"), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", f.ledger.gotRunID)

	var resp deleteRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Deleted)
	assert.Equal(t, 30.5, resp.TotalKm)
}

func TestDeleteRunNotFound(t *testing.T) {
	f := newServerFixture()
	f.ledger.err = fmt.Errorf("run: %w", common.ErrNotFound)

	rec := doRequest(f, http.MethodDelete, "/api/runs/ghost", bearerFor(t, "user-1"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	f := newServerFixture()
	f.ledger.history = []*models.Run{{ID: "run-1", Km: 5}}

	rec := doRequest(f, http.MethodGet, "/api/runs/history?limit=10", bearerFor(t, "user-1"), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, f.ledger.gotLimit)
}

func TestHistoryInvalidLimit(t *testing.T) {
	f := newServerFixture()

	rec := doRequest(f, http.MethodGet, "/api/runs/history?limit=zero", bearerFor(t, "user-1"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	f := newServerFixture()
	f.ledger.stats = &services.Statistics{TotalRuns: 3, TotalKm: 30}

	rec := doRequest(f, http.MethodGet, "/api/runs/stats", bearerFor(t, "user-1"), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got services.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalRuns)
}

func TestListByStateEndpoint(t *testing.T) {
	f := newServerFixture()
	f.catalog.municipalities = []geodir.Municipality{{Name: "Salvador", StateName: "Bahia", StateCode: "BA"}}

	rec := doRequest(f, http.MethodGet, "/api/cities/state/BA", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BA", f.catalog.gotState)
}

func TestSearchEndpoint(t *testing.T) {
	f := newServerFixture()
	f.catalog.err = fmt.Errorf("%w: search term must be at least 2 characters", common.ErrValidation)

	rec := doRequest(f, http.MethodGet, "/api/cities/search?q=a", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "a", f.catalog.gotTerm)
}

func TestSetOriginEndpoint(t *testing.T) {
	f := newServerFixture()
	f.catalog.profile = &services.Profile{ID: "user-1"}

	rec := doRequest(f, http.MethodPost, "/api/cities/origin", bearerFor(t, "user-1"),
		`{"city":"Salvador","state":"BA"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Salvador", f.catalog.gotCity)
	assert.Equal(t, "BA", f.catalog.gotState)
}

func TestRouteEndpoint(t *testing.T) {
	f := newServerFixture()
	f.estimator.estimate = &services.RouteEstimate{TotalKm: 108.5}

	rec := doRequest(f, http.MethodGet, "/api/routes/city-a/city-b", bearerFor(t, "user-1"), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got services.RouteEstimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 108.5, got.TotalKm)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	f := newServerFixture()
	f.estimator.err = fmt.Errorf("pq: connection refused")

	rec := doRequest(f, http.MethodGet, "/api/routes/a/b", bearerFor(t, "user-1"), "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
}

func TestHealthAndStatusEndpoints(t *testing.T) {
	f := newServerFixture()

	rec := doRequest(f, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(f, http.MethodGet, "/api/status", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
}
