package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/runjourney/api/internal/common"
	"github.com/runjourney/api/internal/dbx"
	"github.com/runjourney/api/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, run *models.Run) (*models.Run, error) {

	query :=
		`INSERT INTO runs (id, user_id, km, date, note, reached_city_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		run.ID, run.UserID, run.Km, run.Date, run.Note, run.ReachedCityID).Scan(&run.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return run, nil
}

func (r *PostgresRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*models.Run, error) {
	query :=
		`SELECT id, user_id, km, date, note, reached_city_id, created_at
		 FROM runs
		 WHERE id = $1 AND user_id = $2`

	run := &models.Run{}
	var note, reached sql.NullString

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&run.ID, &run.UserID, &run.Km, &run.Date, &note, &reached, &run.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if note.Valid {
		run.Note = &note.String
	}
	if reached.Valid {
		run.ReachedCityID = &reached.String
	}
	return run, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Run, error) {
	query :=
		`SELECT r.id, r.user_id, r.km, r.date, r.note, r.reached_city_id, r.created_at,
		        c.id, c.name, c.state_name, c.state_code
		 FROM runs r
		 LEFT JOIN cities c ON c.id = r.reached_city_id
		 WHERE r.user_id = $1
		 ORDER BY r.date DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Run
	for rows.Next() {
		run := &models.Run{}
		var note, reached sql.NullString
		var cityID, cityName, stateName, stateCode sql.NullString

		if err := rows.Scan(&run.ID, &run.UserID, &run.Km, &run.Date, &note, &reached, &run.CreatedAt,
			&cityID, &cityName, &stateName, &stateCode); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if note.Valid {
			run.Note = &note.String
		}
		if reached.Valid {
			run.ReachedCityID = &reached.String
		}
		if cityID.Valid {
			run.ReachedCity = &models.CitySummary{
				ID:        cityID.String,
				Name:      cityName.String,
				StateName: stateName.String,
				StateCode: stateCode.String,
			}
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListByUserAsc(ctx context.Context, userID string) ([]*models.Run, error) {
	query :=
		`SELECT id, user_id, km, date, note, reached_city_id, created_at
		 FROM runs
		 WHERE user_id = $1
		 ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Run
	for rows.Next() {
		run := &models.Run{}
		var note, reached sql.NullString

		if err := rows.Scan(&run.ID, &run.UserID, &run.Km, &run.Date, &note, &reached, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if note.Valid {
			run.Note = &note.String
		}
		if reached.Valid {
			run.ReachedCityID = &reached.String
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
