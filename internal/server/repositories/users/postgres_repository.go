package users

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

const userColumns = `id, name, email, password_hash, total_km, origin_city_id, current_city_id, created_at`

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, name, email, password_hash, total_km)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.TotalKm).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) SetOrigin(ctx context.Context, id, cityID string) error {
	query :=
		`UPDATE users SET origin_city_id = $2, current_city_id = $2
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, cityID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) UpdateProgress(ctx context.Context, id string, totalKm float64, currentCityID *string) error {
	query :=
		`UPDATE users SET total_km = $2, current_city_id = $3
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, totalKm, currentCityID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) UpdateTotal(ctx context.Context, id string, totalKm float64) error {
	query := `UPDATE users SET total_km = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, totalKm)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var origin, current sql.NullString

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.TotalKm, &origin, &current, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if origin.Valid {
		user.OriginCityID = &origin.String
	}
	if current.Valid {
		user.CurrentCityID = &current.String
	}
	return user, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
