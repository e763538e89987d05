package domain

import (
	"context"
	"errors"
)

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("resource not found")

// UserIDFrom returns the authenticated user id placed in ctx by the auth middleware.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(KeyUserID).(string)
	return id, ok && id != ""
}
