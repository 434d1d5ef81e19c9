package models

import (
	"time"

	"github.com/google/uuid"
)

// Public part of the user that is shown next to the post
type Author struct {
	ID       uuid.UUID
	Username string
}

// Post with its author resolved
// Author.ID is the stored post owner and never changes after creation
type Post struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Title     string
	Content   string
	Author    Author
}

// Check whether the user is allowed to change the post
func (p Post) IsOwnedBy(userID uuid.UUID) bool {
	return p.Author.ID == userID
}
