package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	HashedPassword string
}

// Author returns the public summary of the user
func (u User) Author() Author {
	return Author{ID: u.ID, Username: u.Username}
}
