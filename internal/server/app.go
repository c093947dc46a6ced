// Package server initializes and runs the bulletin board server.
// It selects the storage backend, loads the credential and mailbox stores,
// wires the dispatcher, and handles graceful shutdown.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/boardkeeper/internal/logging"
	"github.com/dmitrijs2005/boardkeeper/internal/server/config"
	"github.com/dmitrijs2005/boardkeeper/internal/server/credstore"
	"github.com/dmitrijs2005/boardkeeper/internal/server/dispatch"
	"github.com/dmitrijs2005/boardkeeper/internal/server/mailbox"
	"github.com/dmitrijs2005/boardkeeper/internal/server/shared/db"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repoManager  db.RepositoryManager
	credService  *credstore.Service
	boardService *mailbox.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	var (
		rm  db.RepositoryManager
		err error
	)
	if c.DatabaseDSN != "" {
		rm, err = db.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	} else {
		rm = db.NewFileRepositoryManager(c.UsersFile, c.BoardFile)
	}

	cs, err := credstore.NewService(ctx, rm.Users())
	if err != nil {
		return nil, fmt.Errorf("credential store init error: %w", err)
	}

	bs, err := mailbox.NewService(ctx, rm.Posts())
	if err != nil {
		return nil, fmt.Errorf("mailbox store init error: %w", err)
	}

	return &App{config: c, logger: logger, repoManager: rm, credService: cs, boardService: bs}, nil
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

// tlsConfig returns the listener TLS configuration, or nil for plain TCP.
// TLS is enabled only when both the certificate and key paths are set.
func (app *App) tlsConfig() (*tls.Config, error) {
	if app.config.TLSCertFile == "" || app.config.TLSKeyFile == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(app.config.TLSCertFile, app.config.TLSKeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading tls key pair: %w", err)
	}

	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc) {

	tlsConf, err := app.tlsConfig()
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	d := dispatch.NewDispatcher(app.credService, app.boardService, app.logger)
	s := dispatch.NewServer(app.config.EndpointAddr, tlsConf, d, app.logger)

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
		app.startServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repoManager.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
