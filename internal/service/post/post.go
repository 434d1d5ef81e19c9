package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/logger"
	"github.com/nkiryanov/blog/internal/models"
	"github.com/nkiryanov/blog/internal/repository"
)

// Source of post authors
type userService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, bool, error)
}

type PostService struct {
	// Repository to access long term data
	storage repository.Storage

	users  userService
	logger logger.Logger
}

func NewService(storage repository.Storage, users userService, l logger.Logger) *PostService {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &PostService{
		storage: storage,
		users:   users,
		logger:  l.With("service", "post"),
	}
}

// All posts with authors, the most recent first
func (s *PostService) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return s.storage.Post().ListPosts(ctx)
}

func (s *PostService) GetPostByID(ctx context.Context, postID uuid.UUID) (models.Post, bool, error) {
	post, err := s.storage.Post().GetPostByID(ctx, postID)
	switch {
	case err == nil:
		return post, true, nil
	case errors.Is(err, apperrors.ErrPostNotFound):
		return models.Post{}, false, nil
	default:
		return models.Post{}, false, err
	}
}

// Create post owned by the user
// Returns apperrors.ErrUserNotFound if there is no such user; nothing is stored then
func (s *PostService) CreatePost(ctx context.Context, title string, content string, userID uuid.UUID) (models.Post, error) {
	user, ok, err := s.users.GetUserByID(ctx, userID)
	switch {
	case err != nil:
		return models.Post{}, fmt.Errorf("can't get post author. Err: %w", err)
	case !ok:
		return models.Post{}, apperrors.ErrUserNotFound
	}

	ts := now()
	post, err := s.storage.Post().CreatePost(ctx, models.Post{
		CreatedAt: ts,
		UpdatedAt: ts,
		Title:     title,
		Content:   content,
		Author:    user.Author(),
	})
	if err != nil {
		return models.Post{}, fmt.Errorf("can't create post. Err: %w", err)
	}

	s.logger.Info("post created", "post_id", post.ID, "user_id", user.ID)
	return post, nil
}

// Overwrite post title and content
// ok=false if the post does not exist or belongs to another user: the caller can't tell which
func (s *PostService) UpdatePost(ctx context.Context, postID uuid.UUID, title string, content string, callerID uuid.UUID) (models.Post, bool, error) {
	var updated models.Post

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		post, err := ownedPost(ctx, storage, postID, callerID)
		if err != nil {
			return err
		}

		post.Title = title
		post.Content = content
		post.UpdatedAt = now()

		updated, err = storage.Post().UpdatePost(ctx, post)
		return err
	})

	ok, err := s.hidePermission(err, "update", postID, callerID)
	if !ok {
		return models.Post{}, false, err
	}

	s.logger.Info("post updated", "post_id", postID, "user_id", callerID)
	return updated, true, nil
}

// Delete post
// Returns true only if the post existed and belonged to the caller
func (s *PostService) DeletePost(ctx context.Context, postID uuid.UUID, callerID uuid.UUID) (bool, error) {
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		_, err := ownedPost(ctx, storage, postID, callerID)
		if err != nil {
			return err
		}

		return storage.Post().DeletePost(ctx, postID)
	})

	ok, err := s.hidePermission(err, "delete", postID, callerID)
	if ok {
		s.logger.Info("post deleted", "post_id", postID, "user_id", callerID)
	}
	return ok, err
}

// Collapse "not found" and "not owner" into ok=false
// So nobody can find out that the post of another user exists
func (s *PostService) hidePermission(err error, action string, postID uuid.UUID, callerID uuid.UUID) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrPostPermissionDenied):
		s.logger.Debug("post "+action+" denied", "post_id", postID, "user_id", callerID)
		return false, nil
	case errors.Is(err, apperrors.ErrPostNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("can't %s post. Err: %w", action, err)
	}
}

// Return post if the caller owns it
// apperrors.ErrPostNotFound or apperrors.ErrPostPermissionDenied otherwise
func ownedPost(ctx context.Context, storage repository.Storage, postID uuid.UUID, callerID uuid.UUID) (models.Post, error) {
	post, err := storage.Post().GetPostByID(ctx, postID)
	if err != nil {
		return post, err
	}

	if !post.IsOwnedBy(callerID) {
		return post, apperrors.ErrPostPermissionDenied
	}

	return post, nil
}

// Stored timestamps keep microseconds only (postgres precision)
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
