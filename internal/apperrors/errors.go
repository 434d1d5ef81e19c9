package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to branch on them
var (
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
)

var (
	ErrUserAlreadyExists = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrUserNotFound      = fmt.Errorf("user not found: %w", ErrNotFound)

	ErrPostNotFound = fmt.Errorf("post not found: %w", ErrNotFound)

	// Caller is not the post author
	// Services never return it to the outside: it is reported as "not found" there
	ErrPostPermissionDenied = fmt.Errorf("post belongs to another user: %w", ErrPermissionDenied)
)
