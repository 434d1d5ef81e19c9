package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/handlers/render"
	"github.com/nkiryanov/blog/internal/handlers/userctx"
	"github.com/nkiryanov/blog/internal/logger"
)

type postContent struct {
	Title   string `json:"title" validate:"required,notblank,max=255"`
	Content string `json:"content" validate:"required,notblank"`
}

type postChanged struct {
	Message string    `json:"message"`
	PostID  uuid.UUID `json:"postId"`
	Title   string    `json:"title"`
}

func handleListPosts(postService postService, l logger.Logger) http.Handler {
	type item struct {
		ID             uuid.UUID `json:"id"`
		Title          string    `json:"title"`
		Content        string    `json:"content"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
		AuthorID       uuid.UUID `json:"authorId"`
		AuthorUsername string    `json:"authorUsername"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts, err := postService.GetAllPosts(r.Context())
		if err != nil {
			l.Error("Failed to list posts", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]item, 0, len(posts))
		for _, p := range posts {
			res = append(res, item{
				ID:             p.ID,
				Title:          p.Title,
				Content:        p.Content,
				CreatedAt:      p.CreatedAt,
				UpdatedAt:      p.UpdatedAt,
				AuthorID:       p.Author.ID,
				AuthorUsername: p.Author.Username,
			})
		}

		render.JSON(w, res)
	})
}

func handleGetPost(postService postService, l logger.Logger) http.Handler {
	type author struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
	}
	type response struct {
		ID        uuid.UUID `json:"id"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
		User      author    `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.NotFound(w, "Post")
			return
		}

		post, ok, err := postService.GetPostByID(r.Context(), postID)
		switch {
		case err != nil:
			l.Error("Failed to get post", "error", err, "post_id", postID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		case !ok:
			render.NotFound(w, "Post")
		default:
			render.JSON(w, response{
				ID:        post.ID,
				Title:     post.Title,
				Content:   post.Content,
				CreatedAt: post.CreatedAt,
				UpdatedAt: post.UpdatedAt,
				User:      author{ID: post.Author.ID, Username: post.Author.Username},
			})
		}
	})
}

// Caller id is set by middleware.CallerMiddleware
func handleCreatePost(postService postService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[postContent](w, r)
		if err != nil {
			return
		}

		post, err := postService.CreatePost(r.Context(), data.Title, data.Content, callerID)
		switch {
		case err == nil:
			render.JSON(w, postChanged{Message: "Post created successfully", PostID: post.ID, Title: post.Title})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusBadRequest)
		default:
			l.Error("Failed to create post", "error", err, "user_id", callerID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdatePost(postService postService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.NotFound(w, "Post")
			return
		}

		data, err := render.BindAndValidate[postContent](w, r)
		if err != nil {
			return
		}

		post, ok, err := postService.UpdatePost(r.Context(), postID, data.Title, data.Content, callerID)
		switch {
		case err != nil:
			l.Error("Failed to update post", "error", err, "post_id", postID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		case !ok:
			render.NotFound(w, "Post")
		default:
			render.JSON(w, postChanged{Message: "Post updated successfully", PostID: post.ID, Title: post.Title})
		}
	})
}

func handleDeletePost(postService postService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.NotFound(w, "Post")
			return
		}

		deleted, err := postService.DeletePost(r.Context(), postID, callerID)
		switch {
		case err != nil:
			l.Error("Failed to delete post", "error", err, "post_id", postID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		case !deleted:
			render.NotFound(w, "Post")
		default:
			render.JSON(w, response{Message: "Post deleted successfully"})
		}
	})
}
