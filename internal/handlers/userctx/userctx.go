package userctx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const callerKey ctxKey = "caller"

// Create a new context with the id of the calling user
func New(ctx context.Context, callerID uuid.UUID) context.Context {
	return context.WithValue(ctx, callerKey, callerID)
}

// Extract the calling user id from the context
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(callerKey).(uuid.UUID)
	return id, ok
}
