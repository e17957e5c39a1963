package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/store"
)

const (
	DefaultRateLimit = 100
	secretPrefix     = "sk_"
)

type CreateServiceIdentityParams struct {
	Name        string
	Permissions []model.Permission
	RateLimit   *int32
}

// ServiceIdentityService provisions the callers of the API. It backs the
// admin endpoints and the approvalsctl CLI.
type ServiceIdentityService interface {
	// Create returns the new identity and its plaintext secret. The secret is
	// not recoverable afterwards.
	Create(ctx context.Context, params CreateServiceIdentityParams) (*model.ServiceIdentity, string, error)
	Deactivate(ctx context.Context, serviceID int64) (*model.ServiceIdentity, error)
}

type serviceIdentityService struct {
	identities store.ServiceIdentityStore
	logger     *slog.Logger
}

func NewServiceIdentityService(identities store.ServiceIdentityStore, logger *slog.Logger) ServiceIdentityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceIdentityService{identities: identities, logger: logger}
}

func (s *serviceIdentityService) Create(ctx context.Context, params CreateServiceIdentityParams) (*model.ServiceIdentity, string, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, "", invalidf("name is required")
	}
	if len(params.Permissions) == 0 {
		return nil, "", invalidf("at least one permission is required")
	}
	for _, p := range params.Permissions {
		if !p.IsValid() {
			return nil, "", invalidf("unknown permission %q", p)
		}
	}

	rateLimit := int32(DefaultRateLimit)
	if params.RateLimit != nil {
		if *params.RateLimit <= 0 {
			return nil, "", invalidf("rate_limit must be positive")
		}
		rateLimit = *params.RateLimit
	}

	secret, err := newServiceSecret()
	if err != nil {
		return nil, "", err
	}

	identity := &model.ServiceIdentity{
		ID:          id.New(),
		Name:        name,
		SecretHash:  HashSecret(secret),
		Permissions: params.Permissions,
		RateLimit:   rateLimit,
		IsActive:    true,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, "", fmt.Errorf("creating service identity: %w", err)
	}

	s.logger.InfoContext(ctx, "service identity created",
		"service_id", identity.ID,
		"name", identity.Name,
		"permissions", identity.Permissions)
	return identity, secret, nil
}

func (s *serviceIdentityService) Deactivate(ctx context.Context, serviceID int64) (*model.ServiceIdentity, error) {
	identity, err := s.identities.SetActive(ctx, serviceID, false)
	if err != nil {
		return nil, fromStore(err, "deactivating service identity")
	}
	s.logger.InfoContext(ctx, "service identity deactivated", "service_id", serviceID)
	return identity, nil
}

func newServiceSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating service secret: %w", err)
	}
	return secretPrefix + hex.EncodeToString(b), nil
}
