// Package server initializes and runs the application: it opens the
// database, applies migrations, wires the services to their repositories
// and external clients, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/server/cache"
	"github.com/runjourney/api/internal/server/config"
	"github.com/runjourney/api/internal/server/geocode"
	"github.com/runjourney/api/internal/server/geodir"
	"github.com/runjourney/api/internal/server/httpapi"
	"github.com/runjourney/api/internal/server/repositories/repomanager"
	"github.com/runjourney/api/internal/server/routing"
	"github.com/runjourney/api/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	cache  *cache.Cache
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	c := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	directory := geodir.NewClient(cfg.DirectoryBaseURL, cfg.ExternalTimeout, c, logger)
	geocoder := geocode.NewClient(cfg.GeocoderBaseURL, cfg.ExternalTimeout, c, logger)
	router := routing.NewClient(cfg.RoutingBaseURL, cfg.RoutingAPIKey, cfg.ExternalTimeout, logger)

	userService := services.NewUserService(db, rm, cfg, logger)
	positionService := services.NewPositionService(rm)
	ledgerService := services.NewRunLedgerService(db, rm, positionService, logger)
	cityService := services.NewCityService(db, rm, userService, directory, geocoder, logger)
	routeService := services.NewRouteEstimatorService(db, rm, router, logger)

	srv := httpapi.NewServer(cfg.Addr, []byte(cfg.SecretKey),
		userService, ledgerService, cityService, routeService, logger)

	return &App{config: cfg, logger: logger, db: db, cache: c, server: srv}, nil
}

// Run serves until the context is cancelled or a termination signal
// arrives, then closes the database and cache connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	app.logger.Info(ctx, "starting app", "addr", app.config.Addr)
	err := app.server.Run(ctx)

	if closeErr := app.cache.Close(); closeErr != nil {
		app.logger.Warn(ctx, "cache close error", "error", closeErr)
	}
	if closeErr := app.db.Close(); closeErr != nil {
		app.logger.Warn(ctx, "db close error", "error", closeErr)
	}

	return err
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}
