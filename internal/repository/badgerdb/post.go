package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/models"
)

type PostRepo struct {
	s *Storage
}

// Create post. ID and timestamps are generated if zero
// Author is checked in the same transaction, so no post without user is stored
func (r *PostRepo) CreatePost(_ context.Context, p models.Post) (models.Post, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	rec := postRecord{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Title:     p.Title,
		Content:   p.Content,
		UserID:    p.Author.ID,
	}

	var author userRecord
	err := r.s.update(func(txn *badger.Txn) error {
		if err := getUser(txn, rec.UserID, &author); err != nil {
			return err
		}
		return setJSON(txn, postKey(rec.ID), rec)
	})
	if err != nil {
		return models.Post{}, err
	}

	return rec.model(author.model().Author()), nil
}

func (r *PostRepo) GetPostByID(_ context.Context, id uuid.UUID) (models.Post, error) {
	var post models.Post
	err := r.s.view(func(txn *badger.Txn) error {
		rec, err := getPost(txn, id)
		if err != nil {
			return err
		}

		author, err := getAuthor(txn, rec.UserID)
		if err != nil {
			return err
		}

		post = rec.model(author)
		return nil
	})

	return post, err
}

// Scan all posts and resolve each author once
func (r *PostRepo) ListPosts(_ context.Context) ([]models.Post, error) {
	posts := []models.Post{}

	err := r.s.view(func(txn *badger.Txn) error {
		authors := make(map[uuid.UUID]models.Author)

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(postKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec postRecord
			err := it.Item().Value(func(val []byte) error {
				return decodeRecord(val, &rec)
			})
			if err != nil {
				return err
			}

			author, ok := authors[rec.UserID]
			if !ok {
				author, err = getAuthor(txn, rec.UserID)
				if err != nil {
					return err
				}
				authors[rec.UserID] = author
			}

			posts = append(posts, rec.model(author))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys are random ids: order by creation time, the most recent first
	slices.SortStableFunc(posts, func(a, b models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return posts, nil
}

// Overwrite post title, content and updated_at
func (r *PostRepo) UpdatePost(_ context.Context, p models.Post) (models.Post, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now()
	}

	var post models.Post
	err := r.s.update(func(txn *badger.Txn) error {
		rec, err := getPost(txn, p.ID)
		if err != nil {
			return err
		}

		rec.Title = p.Title
		rec.Content = p.Content
		rec.UpdatedAt = p.UpdatedAt

		author, err := getAuthor(txn, rec.UserID)
		if err != nil {
			return err
		}

		if err := setJSON(txn, postKey(rec.ID), rec); err != nil {
			return err
		}

		post = rec.model(author)
		return nil
	})

	return post, err
}

func (r *PostRepo) DeletePost(_ context.Context, id uuid.UUID) error {
	return r.s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(postKey(id))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			return apperrors.ErrPostNotFound
		case err != nil:
			return err
		}

		return txn.Delete(postKey(id))
	})
}

func getPost(txn *badger.Txn, id uuid.UUID) (postRecord, error) {
	var rec postRecord
	err := getJSON(txn, postKey(id), &rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, apperrors.ErrPostNotFound
	}
	return rec, err
}

// Users are never deleted, so missing author means broken storage
func getAuthor(txn *badger.Txn, userID uuid.UUID) (models.Author, error) {
	var rec userRecord
	err := getUser(txn, userID, &rec)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return models.Author{}, fmt.Errorf("post author %s is missing", userID)
	}
	if err != nil {
		return models.Author{}, err
	}

	return rec.model().Author(), nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
