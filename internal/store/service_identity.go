package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"basegraph.app/approvals/core/db/sqlc"
	"basegraph.app/approvals/internal/model"
)

type serviceIdentityStore struct {
	queries *sqlc.Queries
}

func newServiceIdentityStore(queries *sqlc.Queries) ServiceIdentityStore {
	return &serviceIdentityStore{queries: queries}
}

func (s *serviceIdentityStore) GetByID(ctx context.Context, id int64) (*model.ServiceIdentity, error) {
	row, err := s.queries.GetServiceIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toServiceIdentityModel(row), nil
}

func (s *serviceIdentityStore) GetBySecretHash(ctx context.Context, secretHash string) (*model.ServiceIdentity, error) {
	row, err := s.queries.GetServiceIdentityBySecretHash(ctx, secretHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toServiceIdentityModel(row), nil
}

func (s *serviceIdentityStore) Create(ctx context.Context, identity *model.ServiceIdentity) error {
	perms := make([]string, len(identity.Permissions))
	for i, p := range identity.Permissions {
		perms[i] = string(p)
	}

	row, err := s.queries.CreateServiceIdentity(ctx, sqlc.CreateServiceIdentityParams{
		ID:          identity.ID,
		Name:        identity.Name,
		SecretHash:  identity.SecretHash,
		Permissions: perms,
		RateLimit:   identity.RateLimit,
	})
	if err != nil {
		return err
	}
	*identity = *toServiceIdentityModel(row)
	return nil
}

func (s *serviceIdentityStore) SetActive(ctx context.Context, id int64, active bool) (*model.ServiceIdentity, error) {
	row, err := s.queries.SetServiceIdentityActive(ctx, sqlc.SetServiceIdentityActiveParams{
		ID:       id,
		IsActive: active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toServiceIdentityModel(row), nil
}

func toServiceIdentityModel(row sqlc.ServiceIdentity) *model.ServiceIdentity {
	perms := make([]model.Permission, len(row.Permissions))
	for i, p := range row.Permissions {
		perms[i] = model.Permission(p)
	}
	return &model.ServiceIdentity{
		ID:          row.ID,
		Name:        row.Name,
		SecretHash:  row.SecretHash,
		Permissions: perms,
		RateLimit:   row.RateLimit,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
