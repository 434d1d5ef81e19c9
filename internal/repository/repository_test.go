package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/models"
	"github.com/nkiryanov/blog/internal/repository"
	"github.com/nkiryanov/blog/internal/testutil/storagetest"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func createUser(t *testing.T, s repository.Storage, username string) models.User {
	t.Helper()

	user, err := s.User().CreateUser(t.Context(), models.User{Username: username, HashedPassword: "hashed"})
	require.NoError(t, err, "creating user should not fail")
	return user
}

func createPost(t *testing.T, s repository.Storage, author models.User, title string, createdAt time.Time) models.Post {
	t.Helper()

	post, err := s.Post().CreatePost(t.Context(), models.Post{
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Title:     title,
		Content:   title + " content",
		Author:    author.Author(),
	})
	require.NoError(t, err, "creating post should not fail")
	return post
}

// Both backends must behave the same way
func TestStorage_Contract(t *testing.T) {
	storagetest.ForEachStorage(t, func(t *testing.T, inStorage storagetest.InStorageFunc) {
		t.Run("User", func(t *testing.T) {
			t.Run("create ok", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					user, err := s.User().CreateUser(t.Context(), models.User{Username: "alice", HashedPassword: "hashed"})

					require.NoError(t, err)
					assert.NotEqual(t, uuid.Nil, user.ID, "id should be generated")
					assert.Equal(t, "alice", user.Username)
					assert.Equal(t, "hashed", user.HashedPassword)
					assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "created at should be recent")
				})
			})

			t.Run("create duplicate fail", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					first := createUser(t, s, "alice")

					_, err := s.User().CreateUser(t.Context(), models.User{Username: "alice", HashedPassword: "other"})

					require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
					require.ErrorIs(t, err, apperrors.ErrConflict)

					stored, err := s.User().GetUserByUsername(t.Context(), "alice")
					require.NoError(t, err)
					require.Equal(t, first.ID, stored.ID, "first user must stay untouched")
					require.Equal(t, "hashed", stored.HashedPassword)
				})
			})

			t.Run("username case sensitive", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					createUser(t, s, "alice")

					_, err := s.User().CreateUser(t.Context(), models.User{Username: "Alice", HashedPassword: "hashed"})

					require.NoError(t, err, "usernames differ by case only are different users")
				})
			})

			t.Run("get by id and username ok", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					created := createUser(t, s, "alice")

					byID, err := s.User().GetUserByID(t.Context(), created.ID)
					require.NoError(t, err)
					byName, err := s.User().GetUserByUsername(t.Context(), "alice")
					require.NoError(t, err)

					for _, got := range []models.User{byID, byName} {
						assert.Equal(t, created.ID, got.ID)
						assert.Equal(t, created.Username, got.Username)
						assert.Equal(t, created.HashedPassword, got.HashedPassword)
						assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "created at should survive round trip")
					}
				})
			})

			t.Run("get not existed fail", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					_, err := s.User().GetUserByID(t.Context(), uuid.New())
					require.ErrorIs(t, err, apperrors.ErrUserNotFound)

					_, err = s.User().GetUserByUsername(t.Context(), "nobody")
					require.ErrorIs(t, err, apperrors.ErrUserNotFound)
				})
			})
		})

		t.Run("Post", func(t *testing.T) {
			t.Run("create ok", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					alice := createUser(t, s, "alice")

					post, err := s.Post().CreatePost(t.Context(), models.Post{
						Title:   "Hello",
						Content: "World",
						Author:  models.Author{ID: alice.ID},
					})

					require.NoError(t, err)
					assert.NotEqual(t, uuid.Nil, post.ID)
					assert.Equal(t, "Hello", post.Title)
					assert.Equal(t, "World", post.Content)
					assert.Equal(t, alice.Author(), post.Author, "author should be resolved")
					assert.WithinDuration(t, time.Now(), post.CreatedAt, time.Second)
					assert.True(t, post.CreatedAt.Equal(post.UpdatedAt), "updated at equals created at on creation")
				})
			})

			t.Run("create without user fail", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					_, err := s.Post().CreatePost(t.Context(), models.Post{
						Title:   "Hello",
						Content: "World",
						Author:  models.Author{ID: uuid.New()},
					})

					require.ErrorIs(t, err, apperrors.ErrUserNotFound)
				})
			})

			t.Run("get ok", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					alice := createUser(t, s, "alice")
					created := createPost(t, s, alice, "Hello", mustParseTime("2024-01-01 19:00:01Z"))

					got, err := s.Post().GetPostByID(t.Context(), created.ID)

					require.NoError(t, err)
					assert.Equal(t, created.ID, got.ID)
					assert.Equal(t, "Hello", got.Title)
					assert.Equal(t, alice.Author(), got.Author)
					assert.True(t, got.CreatedAt.Equal(mustParseTime("2024-01-01 19:00:01Z")))
				})
			})

			t.Run("get not existed fail", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					_, err := s.Post().GetPostByID(t.Context(), uuid.New())

					require.ErrorIs(t, err, apperrors.ErrPostNotFound)
				})
			})

			t.Run("list most recent first", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					alice := createUser(t, s, "alice")
					bob := createUser(t, s, "bob")

					// Insert out of order, so insertion order can't be mistaken for time order
					createPost(t, s, bob, "t2", mustParseTime("2024-01-02 10:00:00Z"))
					createPost(t, s, alice, "t1", mustParseTime("2024-01-01 10:00:00Z"))
					createPost(t, s, alice, "t3", mustParseTime("2024-01-03 10:00:00Z"))

					posts, err := s.Post().ListPosts(t.Context())

					require.NoError(t, err)
					require.Len(t, posts, 3)
					titles := []string{posts[0].Title, posts[1].Title, posts[2].Title}
					require.Equal(t, []string{"t3", "t2", "t1"}, titles)
					require.Equal(t, bob.Author(), posts[1].Author, "authors should be resolved")
					require.Equal(t, alice.Author(), posts[0].Author)
				})
			})

			t.Run("list empty", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					posts, err := s.Post().ListPosts(t.Context())

					require.NoError(t, err)
					require.Empty(t, posts)
				})
			})

			t.Run("update ok", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					alice := createUser(t, s, "alice")
					created := createPost(t, s, alice, "Hello", mustParseTime("2024-01-01 10:00:00Z"))
					updatedAt := mustParseTime("2024-01-05 10:00:00Z")

					updated, err := s.Post().UpdatePost(t.Context(), models.Post{
						ID:        created.ID,
						Title:     "Hi",
						Content:   "There",
						UpdatedAt: updatedAt,
						// Must be ignored: owner and creation time never change
						CreatedAt: updatedAt,
						Author:    models.Author{ID: uuid.New()},
					})

					require.NoError(t, err)
					assert.Equal(t, "Hi", updated.Title)
					assert.Equal(t, "There", updated.Content)
					assert.True(t, updated.UpdatedAt.Equal(updatedAt))
					assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "created at must not change")
					assert.Equal(t, alice.Author(), updated.Author, "owner must not change")

					got, err := s.Post().GetPostByID(t.Context(), created.ID)
					require.NoError(t, err)
					assert.Equal(t, "Hi", got.Title)
				})
			})

			t.Run("update not existed fail", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					_, err := s.Post().UpdatePost(t.Context(), models.Post{ID: uuid.New(), Title: "Hi", Content: "There"})

					require.ErrorIs(t, err, apperrors.ErrPostNotFound)
				})
			})

			t.Run("delete ok", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					alice := createUser(t, s, "alice")
					created := createPost(t, s, alice, "Hello", time.Time{})

					err := s.Post().DeletePost(t.Context(), created.ID)
					require.NoError(t, err)

					_, err = s.Post().GetPostByID(t.Context(), created.ID)
					require.ErrorIs(t, err, apperrors.ErrPostNotFound, "deleted post should be gone")

					err = s.Post().DeletePost(t.Context(), created.ID)
					require.ErrorIs(t, err, apperrors.ErrPostNotFound, "second delete should report not found")
				})
			})
		})

		t.Run("InTx", func(t *testing.T) {
			t.Run("commit on success", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					var created models.User
					err := s.InTx(t.Context(), func(tx repository.Storage) error {
						created = createUser(t, tx, "alice")
						return nil
					})
					require.NoError(t, err)

					_, err = s.User().GetUserByID(t.Context(), created.ID)
					require.NoError(t, err, "user should be visible after commit")
				})
			})

			t.Run("rollback on error", func(t *testing.T) {
				inStorage(t, func(s repository.Storage) {
					errBoom := errors.New("boom")

					err := s.InTx(t.Context(), func(tx repository.Storage) error {
						createUser(t, tx, "alice")
						return errBoom
					})
					require.ErrorIs(t, err, errBoom)

					_, err = s.User().GetUserByUsername(context.Background(), "alice")
					require.ErrorIs(t, err, apperrors.ErrUserNotFound, "user must be rolled back")
				})
			})
		})
	})
}
