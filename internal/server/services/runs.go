// Package services contains the server-side business logic: accounts,
// city catalog, position resolution, the run ledger and route estimation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/runjourney/api/internal/common"
	"github.com/runjourney/api/internal/dbx"
	"github.com/runjourney/api/internal/geo"
	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/metrics"
	"github.com/runjourney/api/internal/server/models"
	"github.com/runjourney/api/internal/server/repositories/repomanager"
)

// MaxRunKm is the per-run distance cap. A product policy, not a physical
// limit.
const MaxRunKm = 200

const defaultHistoryLimit = 50

// Statistics summarizes a user's full run history.
type Statistics struct {
	TotalRuns   int        `json:"totalRuns"`
	TotalKm     float64    `json:"totalKm"`
	AvgKmPerRun float64    `json:"avgKmPerRun"`
	LongestRun  float64    `json:"longestRun"`
	ShortestRun float64    `json:"shortestRun"`
	FirstRun    *time.Time `json:"firstRun"`
	LastRun     *time.Time `json:"lastRun"`
}

// RunLedgerService owns the invariant between a user's total distance and
// their resolved position. All mutations run as a single transaction with
// the user row locked, so concurrent registrations cannot lose updates.
type RunLedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	position    *PositionService
	logger      logging.Logger
}

func NewRunLedgerService(db *sql.DB, m repomanager.RepositoryManager, p *PositionService, l logging.Logger) *RunLedgerService {
	return &RunLedgerService{
		db:          db,
		repomanager: m,
		position:    p,
		logger:      l.With("module", "run_ledger"),
	}
}

// Register validates and persists a run, advancing the user's total distance
// and resolved city. If position resolution fails the previous current city
// is kept and the run still goes through.
func (s *RunLedgerService) Register(ctx context.Context, userID string, km float64, date *time.Time, note *string) (*models.Run, error) {
	if km <= 0 {
		return nil, fmt.Errorf("%w: distance must be greater than zero", common.ErrValidation)
	}
	if km > MaxRunKm {
		return nil, fmt.Errorf("%w: distance too large, maximum %d km per run", common.ErrValidation, MaxRunKm)
	}

	runDate := time.Now()
	if date != nil {
		runDate = *date
	}

	var run *models.Run

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByIDForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("user: %w", err)
		}
		if user.OriginCityID == nil {
			return common.ErrMissingOrigin
		}

		newTotal := geo.Round2(user.TotalKm + km)

		// Best-effort resolution: on failure the run is still registered
		// against the previous current city.
		reachedID := user.CurrentCityID
		var reached *models.City
		pos, err := s.position.Resolve(ctx, tx, *user.OriginCityID, newTotal)
		if err != nil {
			metrics.PositionResolutionsTotal.WithLabelValues("failed").Inc()
			s.logger.Warn(ctx, "position resolution failed, keeping current city",
				"user_id", userID, "error", err)
		} else {
			reached = pos.City
			reachedID = &pos.City.ID
		}

		run = &models.Run{
			ID:            uuid.NewString(),
			UserID:        userID,
			Km:            km,
			Date:          runDate,
			Note:          note,
			ReachedCityID: reachedID,
		}

		if _, err := s.repomanager.Runs(tx).Create(ctx, run); err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).UpdateProgress(ctx, userID, newTotal, reachedID); err != nil {
			return err
		}

		if reached != nil {
			run.ReachedCity = reached.Summary()
		} else if reachedID != nil {
			if city, err := s.repomanager.Cities(tx).GetByID(ctx, *reachedID); err == nil {
				run.ReachedCity = city.Summary()
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.RunsRegisteredTotal.Inc()
	return run, nil
}

// Delete removes a run owned by userID and lowers the total, clamped at 0.
// The current city is deliberately not re-resolved, matching the product's
// register-only resolution behavior; see DESIGN.md.
func (s *RunLedgerService) Delete(ctx context.Context, runID, userID string) (float64, error) {
	var newTotal float64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByIDForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("user: %w", err)
		}

		run, err := s.repomanager.Runs(tx).FindByIDAndUser(ctx, runID, userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("run: %w", common.ErrNotFound)
			}
			return err
		}

		newTotal = geo.Round2(user.TotalKm - run.Km)
		if newTotal < 0 {
			newTotal = 0
		}

		if err := s.repomanager.Runs(tx).Delete(ctx, run.ID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).UpdateTotal(ctx, userID, newTotal)
	})

	if err != nil {
		return 0, err
	}

	metrics.RunsDeletedTotal.Inc()
	return newTotal, nil
}

// History returns the newest runs first, capped at limit (default 50).
func (s *RunLedgerService) History(ctx context.Context, userID string, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repomanager.Runs(s.db).ListByUser(ctx, userID, limit)
}

// Statistics aggregates the user's full run history.
func (s *RunLedgerService) Statistics(ctx context.Context, userID string) (*Statistics, error) {
	history, err := s.repomanager.Runs(s.db).ListByUserAsc(ctx, userID)
	if err != nil {
		return nil, err
	}
	return AggregateStatistics(history), nil
}

// AggregateStatistics computes summary metrics over a run history ordered by
// date ascending. It is a pure function: an empty history yields zeros and
// nil dates.
func AggregateStatistics(history []*models.Run) *Statistics {
	if len(history) == 0 {
		return &Statistics{}
	}

	sum := 0.0
	longest := history[0].Km
	shortest := history[0].Km
	for _, run := range history {
		sum += run.Km
		if run.Km > longest {
			longest = run.Km
		}
		if run.Km < shortest {
			shortest = run.Km
		}
	}

	first := history[0].Date
	last := history[len(history)-1].Date

	return &Statistics{
		TotalRuns:   len(history),
		TotalKm:     geo.Round2(sum),
		AvgKmPerRun: geo.Round2(sum / float64(len(history))),
		LongestRun:  longest,
		ShortestRun: shortest,
		FirstRun:    &first,
		LastRun:     &last,
	}
}
