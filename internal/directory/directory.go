package directory

import (
	"context"
	"errors"
	"strings"
)

// ErrUserNotFound is returned when the directory has no such user.
var ErrUserNotFound = errors.New("user not found in directory")

type User struct {
	ID         string  `json:"id"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Resolver looks up approver identities in the organisation's user directory.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (*User, error)
}

// Permissive accepts any non-blank user id. It is the default when no
// directory is configured.
type Permissive struct{}

func (Permissive) Resolve(_ context.Context, userID string) (*User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserNotFound
	}
	return &User{ID: userID}, nil
}
