// Package server wires configuration, storage, services and the HTTP API
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/a2hand/internal/logging"
	"github.com/dmitrijs2005/a2hand/internal/server/auth"
	"github.com/dmitrijs2005/a2hand/internal/server/config"
	"github.com/dmitrijs2005/a2hand/internal/server/httpapi"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/a2hand/internal/server/services"
	"github.com/dmitrijs2005/a2hand/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	syncLogger func() error
	db         *sql.DB
	httpServer *httpapi.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger, syncLogger, err := logging.New(c.LogBackend, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, dialect, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewSQLRepositoryManager(dialect, logger)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, uploadDir, err := newStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	tokens := auth.NewTokenIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	us := services.NewUserService(db, rm, tokens, c, logger)
	ps := services.NewProductService(db, rm, store, logger)
	ms := services.NewMessageService(db, rm, store, logger)

	hs := httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, ps, ms, httpapi.Options{
		RequireAuth:    c.RequireAuth,
		MaxUploadSize:  c.MaxUploadSize,
		AllowedOrigins: c.CORSAllowedOrigins,
		UploadDir:      uploadDir,
	})

	logger.Info(ctx, "App initialized", "dialect", dialect.Name, "storage", c.StorageBackend)

	return &App{config: c, logger: logger, syncLogger: syncLogger, db: db, httpServer: hs}, nil
}

// newStore returns the configured file store and, for disk storage, the
// directory to serve under /uploads/.
func newStore(ctx context.Context, c *config.Config) (storage.Store, string, error) {
	switch c.StorageBackend {
	case config.StorageS3:
		s, err := storage.NewS3Store(ctx, storage.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		return s, "", err
	default:
		s, err := storage.NewDiskStore(c.UploadDir)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT arrives,
// then releases the database and flushes the logger.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.httpServer.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	_ = app.syncLogger()

	return err
}
