package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runjourney/api/internal/geo"
	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/server/models"
	"github.com/runjourney/api/internal/server/repositories/repomanager"
	"github.com/runjourney/api/internal/server/routing"
)

// Point is a latitude/longitude pair on the route polyline.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RouteEstimate is a best-effort route between two cities: a real road
// route when the routing capability is available, otherwise a straight
// line with the haversine distance.
type RouteEstimate struct {
	TotalKm     float64             `json:"totalKm"`
	Origin      *models.CitySummary `json:"origin"`
	Destination *models.CitySummary `json:"destination"`
	Path        []Point             `json:"path"`
}

// RouteEstimatorService produces visual route geometry for the journey map.
type RouteEstimatorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	router      *routing.Client
	logger      logging.Logger
}

func NewRouteEstimatorService(db *sql.DB, m repomanager.RepositoryManager, r *routing.Client, l logging.Logger) *RouteEstimatorService {
	return &RouteEstimatorService{
		db:          db,
		repomanager: m,
		router:      r,
		logger:      l.With("module", "route_estimator"),
	}
}

// Estimate computes a route between two catalog cities. Routing-service
// failure is always masked by the straight-line fallback; the only errors
// are unknown city IDs.
func (s *RouteEstimatorService) Estimate(ctx context.Context, originID, destID string) (*RouteEstimate, error) {
	cities := s.repomanager.Cities(s.db)

	origin, err := cities.GetByID(ctx, originID)
	if err != nil {
		return nil, fmt.Errorf("origin city: %w", err)
	}
	dest, err := cities.GetByID(ctx, destID)
	if err != nil {
		return nil, fmt.Errorf("destination city: %w", err)
	}

	if s.router.Configured() {
		route, err := s.router.Directions(ctx, origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
		if err == nil {
			return s.fromRoute(origin, dest, route), nil
		}
		s.logger.Warn(ctx, "route computation failed, falling back to straight line",
			"origin", origin.Name, "destination", dest.Name, "error", err)
	}

	return straightLine(origin, dest), nil
}

func (s *RouteEstimatorService) fromRoute(origin, dest *models.City, route *routing.Route) *RouteEstimate {
	path := make([]Point, 0, len(route.Coordinates))
	for _, c := range route.Coordinates {
		if len(c) < 2 {
			continue
		}
		// Wire order is [longitude, latitude].
		path = append(path, Point{Latitude: c[1], Longitude: c[0]})
	}

	return &RouteEstimate{
		TotalKm:     geo.Round2(route.DistanceMeters / 1000),
		Origin:      origin.Summary(),
		Destination: dest.Summary(),
		Path:        path,
	}
}

func straightLine(origin, dest *models.City) *RouteEstimate {
	return &RouteEstimate{
		TotalKm:     geo.Distance(origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude),
		Origin:      origin.Summary(),
		Destination: dest.Summary(),
		Path: []Point{
			{Latitude: origin.Latitude, Longitude: origin.Longitude},
			{Latitude: dest.Latitude, Longitude: dest.Longitude},
		},
	}
}
