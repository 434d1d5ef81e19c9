package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/handlers/middleware"
	"github.com/nkiryanov/blog/internal/logger"
	"github.com/nkiryanov/blog/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	userService userService,
	postService postService,
	logger logger.Logger,
	corsOrigins []string,
) http.Handler {
	withCaller := middleware.CallerMiddleware

	api := http.NewServeMux()

	api.Handle("POST /users/register", handleRegister(userService, logger))
	api.Handle("POST /users/login", handleLogin(userService, logger))
	api.Handle("GET /users/{id}", handleGetUser(userService, logger))

	api.Handle("GET /posts", handleListPosts(postService, logger))
	api.Handle("GET /posts/{id}", handleGetPost(postService, logger))
	api.Handle("POST /posts", withCaller(handleCreatePost(postService, logger)))
	api.Handle("PUT /posts/{id}", withCaller(handleUpdatePost(postService, logger)))
	api.Handle("DELETE /posts/{id}", withCaller(handleDeletePost(postService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.CORSMiddleware(corsOrigins),
	)

	return handler
}

type userService interface {
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	RegisterUser(ctx context.Context, username string, password string) (models.User, error)

	// ok=false if username or password is wrong
	LoginUser(ctx context.Context, username string, password string) (models.User, bool, error)

	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, bool, error)
}

type postService interface {
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostByID(ctx context.Context, postID uuid.UUID) (models.Post, bool, error)

	// Has to return apperrors.ErrUserNotFound if there is no such user
	CreatePost(ctx context.Context, title string, content string, userID uuid.UUID) (models.Post, error)

	// ok=false if the post doesn't exist or the caller doesn't own it
	UpdatePost(ctx context.Context, postID uuid.UUID, title string, content string, callerID uuid.UUID) (models.Post, bool, error)
	DeletePost(ctx context.Context, postID uuid.UUID, callerID uuid.UUID) (bool, error)
}
