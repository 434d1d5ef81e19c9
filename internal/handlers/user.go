package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/apperrors"
	"github.com/nkiryanov/blog/internal/handlers/render"
	"github.com/nkiryanov/blog/internal/logger"
)

type credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type userIdentity struct {
	Message  string    `json:"message"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

func handleRegister(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentials](w, r)
		if err != nil {
			return
		}

		user, err := userService.RegisterUser(r.Context(), data.Username, data.Password)
		switch {
		case err == nil:
			render.JSON(w, userIdentity{
				Message:  "User registered successfully",
				UserID:   user.ID,
				Username: user.Username,
			})
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Username is already taken", http.StatusConflict)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, ok, err := userService.LoginUser(r.Context(), data.Username, data.Password)
		switch {
		case err != nil:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		case !ok:
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			render.JSON(w, userIdentity{
				Message:  "Login successful",
				UserID:   user.ID,
				Username: user.Username,
			})
		}
	})
}

func handleGetUser(userService userService, l logger.Logger) http.Handler {
	type response struct {
		ID        uuid.UUID `json:"id"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"createdAt"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.NotFound(w, "User")
			return
		}

		user, ok, err := userService.GetUserByID(r.Context(), userID)
		switch {
		case err != nil:
			l.Error("Failed to get user", "error", err, "user_id", userID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		case !ok:
			render.NotFound(w, "User")
		default:
			render.JSON(w, response{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt})
		}
	})
}
