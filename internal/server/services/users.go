package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runjourney/api/internal/common"
	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/server/auth"
	"github.com/runjourney/api/internal/server/config"
	"github.com/runjourney/api/internal/server/models"
	"github.com/runjourney/api/internal/server/repositories/repomanager"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthResult bundles a fresh access token with the account it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *UserSummary `json:"user"`
}

// UserSummary is the public account shape returned by register/login.
type UserSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	TotalKm float64 `json:"totalKm"`
}

// Profile is the full account view including journey position.
type Profile struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	TotalKm     float64             `json:"totalKm"`
	OriginCity  *models.CitySummary `json:"originCity"`
	CurrentCity *models.CitySummary `json:"currentCity"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// UserService handles registration, login and profile reads.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	logger                logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		logger:                l.With("module", "users"),
	}
}

// Register creates an account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", common.ErrAlreadyExists)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &AuthResult{Token: token, User: summarize(user)}, nil
}

// Login verifies credentials and mints a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", common.ErrUnauthorized)
		}
		return nil, common.ErrInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", common.ErrUnauthorized)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &AuthResult{Token: token, User: summarize(user)}, nil
}

// Profile returns the account with its origin and current city attached.
func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	return s.buildProfile(ctx, user), nil
}

func (s *UserService) buildProfile(ctx context.Context, user *models.User) *Profile {
	p := &Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		TotalKm:   user.TotalKm,
		CreatedAt: user.CreatedAt,
	}

	cities := s.repomanager.Cities(s.db)
	if user.OriginCityID != nil {
		if city, err := cities.GetByID(ctx, *user.OriginCityID); err == nil {
			p.OriginCity = city.Summary()
		}
	}
	if user.CurrentCityID != nil {
		if city, err := cities.GetByID(ctx, *user.CurrentCityID); err == nil {
			p.CurrentCity = city.Summary()
		}
	}
	return p
}

func summarize(user *models.User) *UserSummary {
	return &UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, TotalKm: user.TotalKm}
}
