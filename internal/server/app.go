// Package server wires the reference intake server: PostgreSQL storage,
// the user and order services, and the gRPC and REST front ends.
package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/dmitrijs2005/posqueue/internal/server/config"
	gs "github.com/dmitrijs2005/posqueue/internal/server/grpc"
	"github.com/dmitrijs2005/posqueue/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/posqueue/internal/server/rest"
	"github.com/dmitrijs2005/posqueue/internal/server/services"
	"golang.org/x/sync/errgroup"
)

// Seams for tests.
var (
	openDB         = repomanager.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	users  *services.UserService
	orders *services.OrderService
}

// NewApp connects to the database, applies migrations and creates the
// bootstrap user when one is configured.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := newRepoManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		users:  services.NewUserService(db, m, c),
		orders: services.NewOrderService(db, m),
	}

	if c.BootstrapUser != "" {
		created, err := app.users.EnsureUser(ctx, c.BootstrapUser, c.BootstrapPassword, c.BootstrapDisplayName)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap user: %w", err)
		}
		if created {
			logger.Info(ctx, "Bootstrap user created", "username", c.BootstrapUser)
		}
	}

	return app, nil
}

// Run serves gRPC and REST until ctx is done or one of them fails.
func (app *App) Run(ctx context.Context) error {

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.orders).Run(ctx)
	})

	g.Go(func() error {
		return rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.users, app.orders).Run(ctx)
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) Close() error {
	return app.db.Close()
}
