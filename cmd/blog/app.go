package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/blog/internal/db"
	"github.com/nkiryanov/blog/internal/handlers"
	"github.com/nkiryanov/blog/internal/logger"
	"github.com/nkiryanov/blog/internal/repository"
	"github.com/nkiryanov/blog/internal/repository/badgerdb"
	"github.com/nkiryanov/blog/internal/repository/postgres"
	"github.com/nkiryanov/blog/internal/service/post"
	"github.com/nkiryanov/blog/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger

	// Release storage resources
	closeStorage func() error
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	storage, closeStorage, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	// Initialize services
	userService := user.NewService(nil, storage, logger)
	postService := post.NewService(storage, userService, logger)

	mux := handlers.NewRouter(userService, postService, logger, c.CORSOrigins)

	return &ServerApp{
		ListenAddr:   c.ListenAddr,
		Handler:      mux,
		logger:       logger,
		closeStorage: closeStorage,
	}, nil
}

// Open storage backend chosen in config
func openStorage(ctx context.Context, c *Config, l logger.Logger) (repository.Storage, func() error, error) {
	switch c.Storage {
	case StoragePostgres:
		// Connect to the database and run migrations
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		l.Info("Postgres storage ready")

		return postgres.NewStorage(pool), func() error { pool.Close(); return nil }, nil

	case StorageBadger:
		bdb, err := badgerdb.Open(c.DataDir, l)
		if err != nil {
			return nil, nil, err
		}
		l.Info("Badger storage ready", "dir", c.DataDir, "in_memory", c.DataDir == "")

		return badgerdb.NewStorage(bdb), bdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage %q", c.Storage)
	}
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

func (s *ServerApp) Close() error {
	if err := s.closeStorage(); err != nil {
		return fmt.Errorf("error while closing storage. Err: %w", err)
	}
	return nil
}
