package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/runjourney/api/internal/common"
	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/server/geocode"
	"github.com/runjourney/api/internal/server/geodir"
	"github.com/runjourney/api/internal/server/models"
	"github.com/runjourney/api/internal/server/repositories/repomanager"
)

const searchLimit = 10

// CityService maintains the lazily-populated city catalog and the user's
// origin assignment.
type CityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	userService *UserService
	directory   *geodir.Client
	geocoder    *geocode.Client
	logger      logging.Logger
}

func NewCityService(db *sql.DB, m repomanager.RepositoryManager, us *UserService, d *geodir.Client, g *geocode.Client, l logging.Logger) *CityService {
	return &CityService{
		db:          db,
		repomanager: m,
		userService: us,
		directory:   d,
		geocoder:    g,
		logger:      l.With("module", "cities"),
	}
}

// FindOrCreate returns the catalog row for a city, creating it on first
// reference: the directory confirms the city exists, the geocoder supplies
// coordinates (with its default fallback), and a creation race against the
// unique index is resolved by re-reading.
func (s *CityService) FindOrCreate(ctx context.Context, name, stateCode string) (*models.City, error) {
	repo := s.repomanager.Cities(s.db)

	city, err := repo.FindByNameState(ctx, name, stateCode)
	if err == nil {
		return city, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	municipality, err := s.directory.Find(ctx, name, stateCode)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("city directory unavailable: %w", err)
	}

	coords := s.geocoder.Lookup(ctx, municipality.Name, municipality.StateName)

	city = &models.City{
		ID:        uuid.NewString(),
		Name:      municipality.Name,
		StateName: municipality.StateName,
		StateCode: municipality.StateCode,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	}

	created, err := repo.Create(ctx, city)
	if err != nil {
		// Likely lost a creation race; the winner's row satisfies us.
		if existing, findErr := repo.FindByNameState(ctx, name, stateCode); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

// ListByState returns the state's municipality directory listing.
func (s *CityService) ListByState(ctx context.Context, stateCode string) ([]geodir.Municipality, error) {
	if len(stateCode) != 2 {
		return nil, fmt.Errorf("%w: state code must be two letters", common.ErrValidation)
	}
	return s.directory.ListByState(ctx, stateCode)
}

// Search matches catalog cities by partial name, for autocomplete.
func (s *CityService) Search(ctx context.Context, term string) ([]*models.City, error) {
	if len(strings.TrimSpace(term)) < 2 {
		return nil, fmt.Errorf("%w: search term must be at least 2 characters", common.ErrValidation)
	}
	return s.repomanager.Cities(s.db).SearchByName(ctx, term, searchLimit)
}

// SetOrigin assigns the user's journey origin; the current city starts
// there too. Returns the updated profile.
func (s *CityService) SetOrigin(ctx context.Context, userID, name, stateCode string) (*Profile, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(stateCode) == "" {
		return nil, fmt.Errorf("%w: city name and state code are required", common.ErrValidation)
	}

	city, err := s.FindOrCreate(ctx, name, stateCode)
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Users(s.db).SetOrigin(ctx, userID, city.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user: %w", common.ErrNotFound)
		}
		return nil, err
	}

	s.logger.Info(ctx, "origin city set", "user_id", userID, "city", city.Name, "state", city.StateCode)
	return s.userService.Profile(ctx, userID)
}
