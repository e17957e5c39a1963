package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/store"
)

// AuthContext is the authenticated caller attached to a request.
type AuthContext struct {
	ServiceID   int64
	ServiceName string
	Permissions []model.Permission
	RateLimit   int32
}

// Authorize reports whether the caller holds permission, directly or via "*".
func (a *AuthContext) Authorize(permission model.Permission) bool {
	if a == nil {
		return false
	}
	return slices.Contains(a.Permissions, permission) || slices.Contains(a.Permissions, model.PermissionAll)
}

type AuthService interface {
	Authenticate(ctx context.Context, credential string) (*AuthContext, error)
}

type authService struct {
	identities store.ServiceIdentityStore
}

func NewAuthService(identities store.ServiceIdentityStore) AuthService {
	return &authService{identities: identities}
}

func (s *authService) Authenticate(ctx context.Context, credential string) (*AuthContext, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrUnauthorized
	}

	identity, err := s.identities.GetBySecretHash(ctx, HashSecret(credential))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("looking up service identity: %w", err)
	}
	if !identity.IsActive {
		return nil, ErrUnauthorized
	}

	return &AuthContext{
		ServiceID:   identity.ID,
		ServiceName: identity.Name,
		Permissions: identity.Permissions,
		RateLimit:   identity.RateLimit,
	}, nil
}

// HashSecret is the digest stored for a service credential.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
