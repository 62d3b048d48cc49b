package services

import (
	"context"
	"database/sql"

	"github.com/runjourney/api/internal/common"
	"github.com/runjourney/api/internal/dbx"
	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/server/models"
	citiesrepo "github.com/runjourney/api/internal/server/repositories/cities"
	runsrepo "github.com/runjourney/api/internal/server/repositories/runs"
	usersrepo "github.com/runjourney/api/internal/server/repositories/users"
)

// Hand-rolled repository stubs shared by the service tests.

type fakeUsersRepo struct {
	user   *models.User
	getErr error

	createdUser *models.User
	createErr   error

	setOriginUserID string
	setOriginCityID string
	setOriginErr    error

	progressTotal  float64
	progressCityID *string
	progressErr    error

	totalOnly    float64
	totalUpdated bool
	updateErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdUser = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.user == nil || f.user.Email != email {
		return nil, common.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.user == nil || f.user.ID != id {
		return nil, common.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUsersRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUsersRepo) SetOrigin(ctx context.Context, id, cityID string) error {
	if f.setOriginErr != nil {
		return f.setOriginErr
	}
	f.setOriginUserID = id
	f.setOriginCityID = cityID
	return nil
}

func (f *fakeUsersRepo) UpdateProgress(ctx context.Context, id string, totalKm float64, currentCityID *string) error {
	if f.progressErr != nil {
		return f.progressErr
	}
	f.progressTotal = totalKm
	f.progressCityID = currentCityID
	return nil
}

func (f *fakeUsersRepo) UpdateTotal(ctx context.Context, id string, totalKm float64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.totalOnly = totalKm
	f.totalUpdated = true
	return nil
}

type fakeCitiesRepo struct {
	byID    map[string]*models.City
	byState []*models.City

	getErr    error
	listErr   error
	createErr error

	created    *models.City
	findResult *models.City
	findLater  *models.City
	findCalls  int
	findErr    error

	searchResult []*models.City
	searchErr    error
}

func (f *fakeCitiesRepo) Create(ctx context.Context, c *models.City) (*models.City, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = c
	return c, nil
}

func (f *fakeCitiesRepo) GetByID(ctx context.Context, id string) (*models.City, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return c, nil
}

func (f *fakeCitiesRepo) FindByNameState(ctx context.Context, name, stateCode string) (*models.City, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findLater != nil && f.findCalls > 1 {
		return f.findLater, nil
	}
	if f.findResult == nil {
		return nil, common.ErrNotFound
	}
	return f.findResult, nil
}

func (f *fakeCitiesRepo) ListByStateExcept(ctx context.Context, stateCode, exceptID string) ([]*models.City, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byState, nil
}

func (f *fakeCitiesRepo) SearchByName(ctx context.Context, term string, limit int) ([]*models.City, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResult, nil
}

type fakeRunsRepo struct {
	created   *models.Run
	createErr error

	found   *models.Run
	findErr error

	deletedID string
	deleteErr error

	history []*models.Run
	listErr error
}

func (f *fakeRunsRepo) Create(ctx context.Context, r *models.Run) (*models.Run, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = r
	return r, nil
}

func (f *fakeRunsRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*models.Run, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.found == nil || f.found.ID != id || f.found.UserID != userID {
		return nil, common.ErrNotFound
	}
	return f.found, nil
}

func (f *fakeRunsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Run, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.history) {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeRunsRepo) ListByUserAsc(ctx context.Context, userID string) ([]*models.Run, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.history, nil
}

func (f *fakeRunsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

type fakeRepoManager struct {
	users  usersrepo.Repository
	cities citiesrepo.Repository
	runs   runsrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.users }

func (m *fakeRepoManager) Cities(db dbx.DBTX) citiesrepo.Repository { return m.cities }

func (m *fakeRepoManager) Runs(db dbx.DBTX) runsrepo.Repository { return m.runs }

func testLogger() logging.Logger {
	return logging.Setup("error", "text")
}

func strptr(s string) *string { return &s }
