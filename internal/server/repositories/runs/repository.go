package runs

import (
	"context"

	"github.com/runjourney/api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, run *models.Run) (*models.Run, error)

	// FindByIDAndUser returns the run only when it belongs to userID;
	// an ownership mismatch is indistinguishable from a missing run.
	FindByIDAndUser(ctx context.Context, id, userID string) (*models.Run, error)

	// ListByUser returns the newest runs first, with reached-city summaries
	// attached, capped at limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Run, error)

	// ListByUserAsc returns the full history ordered by date ascending,
	// the input shape the statistics aggregation is defined over.
	ListByUserAsc(ctx context.Context, userID string) ([]*models.Run, error)

	Delete(ctx context.Context, id string) error
}
