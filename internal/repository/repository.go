package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Post repository interface
// Every returned post has its Author resolved
type PostRepo interface {
	// Create post owned by post.Author.ID
	// If the author does not exist must return apperrors.ErrUserNotFound and store nothing
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)

	// If post not found must return apperrors.ErrPostNotFound
	GetPostByID(ctx context.Context, postID uuid.UUID) (models.Post, error)

	// All posts, the most recent (by CreatedAt) first
	ListPosts(ctx context.Context) ([]models.Post, error)

	// Overwrite title, content and updated_at of existing post
	// If post not found must return apperrors.ErrPostNotFound
	UpdatePost(ctx context.Context, post models.Post) (models.Post, error)

	// If post not found must return apperrors.ErrPostNotFound
	DeletePost(ctx context.Context, postID uuid.UUID) error
}

// Storage gives access to all repositories
// Repositories returned from the Storage passed to InTx fn share one transaction
type Storage interface {
	User() UserRepo
	Post() PostRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
