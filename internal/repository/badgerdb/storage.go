// Package badgerdb keeps users and posts in embedded Badger key-value store.
// It is an alternative to postgres storage for single node setups and tests.
package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/logger"
	"github.com/nkiryanov/blog/internal/repository"
)

// Open badger database located at dir
// Empty dir opens in-memory database that is lost on Close
func Open(dir string, l logger.Logger) (*badger.DB, error) {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	opts := badger.DefaultOptions(dir).
		WithInMemory(dir == "").
		WithLogger(badgerLogger{l: l.With("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cant open badger db. Err: %w", err)
	}

	return db, nil
}

type Storage struct {
	db *badger.DB

	// Not nil when storage is used inside InTx
	txn *badger.Txn
}

func NewStorage(db *badger.DB) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{s: s}
}

func (s *Storage) Post() repository.PostRepo {
	return &PostRepo{s: s}
}

// Run fn in one badger read-write transaction
// Badger has no savepoints: nested InTx joins the outer transaction
func (s *Storage) InTx(_ context.Context, fn func(repository.Storage) error) error {
	if s.txn != nil {
		return fn(s)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&Storage{db: s.db, txn: txn})
	})

	return dbError(err)
}

func (s *Storage) view(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return dbError(fn(s.txn))
	}
	return dbError(s.db.View(fn))
}

func (s *Storage) update(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return dbError(fn(s.txn))
	}
	return dbError(s.db.Update(fn))
}

// Keep application errors as is, wrap everything else
func dbError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrConflict):
		return err
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

// Adapter to route badger internal logs to application logger
type badgerLogger struct {
	l logger.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(fmt.Sprintf(format, args...))
}

// Badger is quite talkative on info level (compactions, value log gc): keep it as debug
func (b badgerLogger) Infof(format string, args ...any) {
	b.l.Debug(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(fmt.Sprintf(format, args...))
}
