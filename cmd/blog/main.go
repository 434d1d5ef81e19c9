package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	err := run(context.Background(), os.Getenv, os.Getwd, os.Args[1:])
	if err != nil {
		slog.Error("can't run app, sorry", "error", err.Error())
		os.Exit(1)
	}
}

// Load config, start server and serve until ctx is done or SIGINT/SIGTERM received
func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string) (err error) {
	config := NewConfig()
	if err := config.LoadDotEnv(getwd); err != nil {
		return fmt.Errorf("error while reading .env file. Err: %w", err)
	}
	config.LoadEnv(getenv)
	if err := config.ParseFlags(args); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := NewServerApp(ctx, config)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, srv.Close())
	}()

	err = srv.Run(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
