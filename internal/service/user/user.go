package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/logger"
	"github.com/nkiryanov/blog/internal/models"
	"github.com/nkiryanov/blog/internal/repository"
	"github.com/nkiryanov/blog/internal/service/auth"
)

type storage interface {
	User() repository.UserRepo
}

type UserService struct {
	hasher  auth.PasswordHasher
	storage storage
	logger  logger.Logger
}

func NewService(hasher auth.PasswordHasher, storage storage, l logger.Logger) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
		logger:  l.With("service", "user"),
	}
}

// Register new user
// Returns apperrors.ErrUserAlreadyExists if the username is taken
func (s *UserService) RegisterUser(ctx context.Context, username string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, models.User{
		Username:       username,
		HashedPassword: hash,
		CreatedAt:      now(),
	})
	if err != nil {
		return models.User{}, fmt.Errorf("can't create user. Err: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Check user credentials
// Unknown username and wrong password are the same for the caller: ok=false without error
func (s *UserService) LoginUser(ctx context.Context, username string, password string) (models.User, bool, error) {
	user, ok, err := s.GetUserByUsername(ctx, username)
	if err != nil || !ok {
		return models.User{}, false, err
	}

	err = s.hasher.Compare(user.HashedPassword, password)
	switch {
	case err == nil:
		return user, true, nil
	case errors.Is(err, auth.ErrPasswordMismatch):
		return models.User{}, false, nil
	default:
		return models.User{}, false, fmt.Errorf("can't check password. Err: %w", err)
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, bool, error) {
	return lookup(s.storage.User().GetUserByID(ctx, userID))
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (models.User, bool, error) {
	return lookup(s.storage.User().GetUserByUsername(ctx, username))
}

// Turn repository "not found" error into absent value
func lookup(user models.User, err error) (models.User, bool, error) {
	switch {
	case err == nil:
		return user, true, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, false, nil
	default:
		return models.User{}, false, err
	}
}
