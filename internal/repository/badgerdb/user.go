package badgerdb

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/models"
)

type UserRepo struct {
	s *Storage
}

// Create user. ID and CreatedAt are generated if zero
// Username uniqueness is kept by the username index key
func (r *UserRepo) CreateUser(_ context.Context, u models.User) (models.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}

	rec := userRecord{
		ID:           u.ID,
		CreatedAt:    u.CreatedAt,
		Username:     u.Username,
		PasswordHash: u.HashedPassword,
	}

	err := r.s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(usernameKey(rec.Username))
		switch {
		case err == nil:
			return apperrors.ErrUserAlreadyExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := setJSON(txn, userKey(rec.ID), rec); err != nil {
			return err
		}
		return txn.Set(usernameKey(rec.Username), rec.ID[:])
	})

	// Concurrent registration of the same username read the index in parallel
	if errors.Is(err, badger.ErrConflict) {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}
	if err != nil {
		return models.User{}, err
	}

	return rec.model(), nil
}

func (r *UserRepo) GetUserByID(_ context.Context, id uuid.UUID) (models.User, error) {
	var rec userRecord
	err := r.s.view(func(txn *badger.Txn) error {
		return getUser(txn, id, &rec)
	})

	return rec.model(), err
}

func (r *UserRepo) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	var rec userRecord
	err := r.s.view(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			return apperrors.ErrUserNotFound
		case err != nil:
			return err
		}

		var id uuid.UUID
		err = item.Value(func(val []byte) error {
			var parseErr error
			id, parseErr = uuid.FromBytes(val)
			return parseErr
		})
		if err != nil {
			return err
		}

		return getUser(txn, id, &rec)
	})

	return rec.model(), err
}

func getUser(txn *badger.Txn, id uuid.UUID, rec *userRecord) error {
	err := getJSON(txn, userKey(id), rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrUserNotFound
	}
	return err
}
