package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/runjourney/api/internal/dbx"
	"github.com/runjourney/api/internal/geo"
	"github.com/runjourney/api/internal/metrics"
	"github.com/runjourney/api/internal/server/models"
	"github.com/runjourney/api/internal/server/repositories/repomanager"
)

// Candidate pairs a city with its straight-line distance from the origin.
type Candidate struct {
	City     *models.City
	Distance float64
}

// Position is the result of resolving a cumulative distance.
type Position struct {
	City            *models.City
	DistanceCovered float64
}

// PositionService maps (origin, cumulative km) to the city a runner is
// deemed to have reached. Candidates are confined to the origin's state;
// a runner who outruns the state stays at its farthest city.
type PositionService struct {
	repomanager repomanager.RepositoryManager
}

func NewPositionService(m repomanager.RepositoryManager) *PositionService {
	return &PositionService{repomanager: m}
}

// Candidates returns the cities eligible to be reached from origin, ordered
// ascending by distance; equal distances are broken by city ID so resolution
// is deterministic.
func (s *PositionService) Candidates(ctx context.Context, db dbx.DBTX, origin *models.City) ([]Candidate, error) {
	cities, err := s.repomanager.Cities(db).ListByStateExcept(ctx, origin.StateCode, origin.ID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(cities))
	for _, city := range cities {
		candidates = append(candidates, Candidate{
			City:     city,
			Distance: geo.Distance(origin.Latitude, origin.Longitude, city.Latitude, city.Longitude),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].City.ID < candidates[j].City.ID
	})

	return candidates, nil
}

// Resolve walks the candidate list in ascending distance order and returns
// the farthest city whose distance does not exceed cumulativeKm. Zero
// cumulative distance, or an empty candidate set, resolves to the origin.
func (s *PositionService) Resolve(ctx context.Context, db dbx.DBTX, originID string, cumulativeKm float64) (*Position, error) {
	origin, err := s.repomanager.Cities(db).GetByID(ctx, originID)
	if err != nil {
		return nil, fmt.Errorf("origin city: %w", err)
	}

	if cumulativeKm == 0 {
		metrics.PositionResolutionsTotal.WithLabelValues("origin").Inc()
		return &Position{City: origin, DistanceCovered: 0}, nil
	}

	candidates, err := s.Candidates(ctx, db, origin)
	if err != nil {
		return nil, err
	}

	current := origin
	for _, c := range candidates {
		if c.Distance > cumulativeKm {
			// Sorted ascending, so nothing further can be within reach.
			break
		}
		current = c.City
	}

	if current.ID == origin.ID {
		metrics.PositionResolutionsTotal.WithLabelValues("origin").Inc()
	} else {
		metrics.PositionResolutionsTotal.WithLabelValues("advanced").Inc()
	}

	return &Position{City: current, DistanceCovered: cumulativeKm}, nil
}
