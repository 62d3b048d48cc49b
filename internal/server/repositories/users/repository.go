package users

import (
	"context"

	"github.com/runjourney/api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByIDForUpdate locks the user row for the duration of the enclosing
	// transaction so concurrent ledger mutations serialize per user.
	GetByIDForUpdate(ctx context.Context, id string) (*models.User, error)

	SetOrigin(ctx context.Context, id, cityID string) error
	UpdateProgress(ctx context.Context, id string, totalKm float64, currentCityID *string) error
	UpdateTotal(ctx context.Context, id string, totalKm float64) error
}
