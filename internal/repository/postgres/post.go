package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/models"
)

type PostRepo struct {
	DB DBTX
}

// Insert post and return it joined with the author
// The foreign key guarantees the author exists
const createPost = `-- name: CreatePost
WITH inserted AS (
	INSERT INTO posts (id, created_at, updated_at, title, content, user_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at, title, content, user_id
)
SELECT p.id, p.created_at, p.updated_at, p.title, p.content, u.id, u.username
FROM inserted p
JOIN users u ON u.id = p.user_id
`

// Create post. ID and timestamps are generated if zero
func (r *PostRepo) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	rows, _ := r.DB.Query(ctx, createPost, p.ID, p.CreatedAt, p.UpdatedAt, p.Title, p.Content, p.Author.ID)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return post, apperrors.ErrUserNotFound
		}

		return post, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

const getPostByID = `-- name: GetPostByID
SELECT p.id, p.created_at, p.updated_at, p.title, p.content, u.id, u.username
FROM posts p
JOIN users u ON u.id = p.user_id
WHERE p.id = $1
`

func (r *PostRepo) GetPostByID(ctx context.Context, id uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, getPostByID, id)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	default:
		return post, fmt.Errorf("db error: %w", err)
	}
}

// Authors are joined in the same query: no extra lookup per post
const listPosts = `-- name: ListPosts
SELECT p.id, p.created_at, p.updated_at, p.title, p.content, u.id, u.username
FROM posts p
JOIN users u ON u.id = p.user_id
ORDER BY p.created_at DESC
`

func (r *PostRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, _ := r.DB.Query(ctx, listPosts)
	posts, err := pgx.CollectRows(rows, rowToPost)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return posts, nil
}

const updatePost = `-- name: UpdatePost
WITH updated AS (
	UPDATE posts
	SET title = $2, content = $3, updated_at = $4
	WHERE id = $1
	RETURNING id, created_at, updated_at, title, content, user_id
)
SELECT p.id, p.created_at, p.updated_at, p.title, p.content, u.id, u.username
FROM updated p
JOIN users u ON u.id = p.user_id
`

// Overwrite post title, content and updated_at
// Owner and created_at are never changed
func (r *PostRepo) UpdatePost(ctx context.Context, p models.Post) (models.Post, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now()
	}

	rows, _ := r.DB.Query(ctx, updatePost, p.ID, p.Title, p.Content, p.UpdatedAt)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	default:
		return post, fmt.Errorf("db error: %w", err)
	}
}

const deletePost = `-- name: DeletePost
DELETE FROM posts
WHERE id = $1
`

func (r *PostRepo) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deletePost, id)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrPostNotFound
	default:
		return nil
	}
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Title, &p.Content, &p.Author.ID, &p.Author.Username)
	return p, err
}

// Postgres keeps microseconds only: truncate so the value survives round trip
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
