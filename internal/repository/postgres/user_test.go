package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/models"
	"github.com/nkiryanov/blog/internal/repository"
	"github.com/nkiryanov/blog/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user with provided id and time", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			id := uuid.New()
			createdAt := time.Date(2024, 1, 1, 19, 0, 1, 123456000, time.UTC)

			user, err := r.CreateUser(t.Context(), models.User{
				ID:             id,
				CreatedAt:      createdAt,
				Username:       "testuser",
				HashedPassword: "hashedpassword123",
			})

			require.NoError(t, err)
			assert.Equal(t, id, user.ID)
			assert.True(t, createdAt.Equal(user.CreatedAt), "microseconds should be kept")
		})
	})

	t.Run("duplicate username keeps transaction usable", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), models.User{Username: "testuser", HashedPassword: "hashedpassword123"})
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), models.User{Username: "testuser", HashedPassword: "other"})
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

			// Transaction is not aborted: following queries work
			got, err := r.GetUserByUsername(t.Context(), "testuser")
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})
}

func Test_Storage(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("nested InTx rolls back to savepoint", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)
			outer, err := s.User().CreateUser(t.Context(), models.User{Username: "outer", HashedPassword: "pwd"})
			require.NoError(t, err)

			err = s.InTx(t.Context(), func(inner repository.Storage) error {
				_, err := inner.Post().CreatePost(t.Context(), models.Post{
					Title:   "Hello",
					Content: "World",
					Author:  models.Author{ID: uuid.New()}, // foreign key violation aborts the savepoint
				})
				return err
			})
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			// Outer transaction survived
			_, err = s.User().GetUserByID(t.Context(), outer.ID)
			require.NoError(t, err)
		})
	})
}
