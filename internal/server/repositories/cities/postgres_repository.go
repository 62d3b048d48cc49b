package cities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

const cityColumns = `id, name, state_name, state_code, latitude, longitude, population`

func (r *PostgresRepository) Create(ctx context.Context, city *models.City) (*models.City, error) {

	query :=
		`INSERT INTO cities (id, name, state_name, state_code, latitude, longitude, population)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		city.ID, city.Name, city.StateName, city.StateCode,
		city.Latitude, city.Longitude, city.Population).Scan(&city.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return city, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE id = $1`
	return scanCity(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByNameState(ctx context.Context, name, stateCode string) (*models.City, error) {
	query :=
		`SELECT ` + cityColumns + ` FROM cities
		 WHERE LOWER(name) = LOWER($1) AND state_code = $2`

	return scanCity(r.db.QueryRowContext(ctx, query, name, strings.ToUpper(stateCode)))
}

func (r *PostgresRepository) ListByStateExcept(ctx context.Context, stateCode, exceptID string) ([]*models.City, error) {
	query :=
		`SELECT ` + cityColumns + ` FROM cities
		 WHERE state_code = $1 AND id <> $2
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, strings.ToUpper(stateCode), exceptID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collectCities(rows)
}

func (r *PostgresRepository) SearchByName(ctx context.Context, term string, limit int) ([]*models.City, error) {
	query :=
		`SELECT ` + cityColumns + ` FROM cities
		 WHERE name ILIKE '%' || $1 || '%'
		 ORDER BY name
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, term, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collectCities(rows)
}

func scanCity(row *sql.Row) (*models.City, error) {
	city := &models.City{}
	err := row.Scan(&city.ID, &city.Name, &city.StateName, &city.StateCode,
		&city.Latitude, &city.Longitude, &city.Population)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	city.StateCode = strings.TrimSpace(city.StateCode)
	return city, nil
}

func collectCities(rows *sql.Rows) ([]*models.City, error) {
	var out []*models.City
	for rows.Next() {
		city := &models.City{}
		if err := rows.Scan(&city.ID, &city.Name, &city.StateName, &city.StateCode,
			&city.Latitude, &city.Longitude, &city.Population); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		city.StateCode = strings.TrimSpace(city.StateCode)
		out = append(out, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
