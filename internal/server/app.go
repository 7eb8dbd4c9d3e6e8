// Package server initializes and runs the credential service: it opens the
// store, applies migrations, wires the workflows, and starts the HTTP
// endpoint with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/HakanVardarr/file-server/internal/filex"
	"github.com/HakanVardarr/file-server/internal/logging"
	"github.com/HakanVardarr/file-server/internal/server/config"
	"github.com/HakanVardarr/file-server/internal/server/httpapi"
	"github.com/HakanVardarr/file-server/internal/server/repositories/repomanager"
	"github.com/HakanVardarr/file-server/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
	filesDir    string
}

func NewApp(cfg *config.Config) (*App, error) {

	s := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(s)

	db, rm, err := repomanager.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us, err := services.NewUserService(db, rm, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("user service init error: %w", err)
	}

	filesDir, err := filex.EnsureSubDir(cfg.FilesDir)
	if err != nil {
		return nil, fmt.Errorf("files dir init error: %w", err)
	}

	return &App{config: cfg, logger: logger, userService: us, filesDir: filesDir}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.filesDir)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
