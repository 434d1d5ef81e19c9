package badgerdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/models"
)

const (
	userKeyPrefix     = "user:"
	usernameKeyPrefix = "username:"
	postKeyPrefix     = "post:"
)

func userKey(id uuid.UUID) []byte {
	return []byte(userKeyPrefix + id.String())
}

// Unique index: username -> user id
func usernameKey(username string) []byte {
	return []byte(usernameKeyPrefix + username)
}

func postKey(id uuid.UUID) []byte {
	return []byte(postKeyPrefix + id.String())
}

// Stored shape of the user
type userRecord struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
}

func (r userRecord) model() models.User {
	return models.User{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt,
		Username:       r.Username,
		HashedPassword: r.PasswordHash,
	}
}

// Stored shape of the post: only author id is kept, like posts.user_id column
type postRecord struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    uuid.UUID `json:"user_id"`
}

func (r postRecord) model(author models.Author) models.Post {
	return models.Post{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Title:     r.Title,
		Content:   r.Content,
		Author:    author,
	}
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return txn.Set(key, data)
}

// Returns badger.ErrKeyNotFound as is
func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}

	return item.Value(func(val []byte) error {
		return decodeRecord(val, v)
	})
}

func decodeRecord(val []byte, v any) error {
	if err := json.Unmarshal(val, v); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return nil
}
