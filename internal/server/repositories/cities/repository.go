package cities

import (
	"context"

	"github.com/runjourney/api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, city *models.City) (*models.City, error)
	GetByID(ctx context.Context, id string) (*models.City, error)

	// FindByNameState matches the city name case-insensitively within a state.
	FindByNameState(ctx context.Context, name, stateCode string) (*models.City, error)

	// ListByStateExcept returns every known city of a state except the given
	// one. This is the raw candidate pool for position resolution.
	ListByStateExcept(ctx context.Context, stateCode, exceptID string) ([]*models.City, error)

	SearchByName(ctx context.Context, term string, limit int) ([]*models.City, error)
}
