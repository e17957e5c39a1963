package dto

import (
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
)

type CreateServiceRequest struct {
	Name        string             `json:"name" binding:"required,max=255"`
	Permissions []model.Permission `json:"permissions" binding:"required,min=1"`
	RateLimit   *int32             `json:"rate_limit,omitempty"`
}

func (r CreateServiceRequest) Params() service.CreateServiceIdentityParams {
	return service.CreateServiceIdentityParams{
		Name:        r.Name,
		Permissions: r.Permissions,
		RateLimit:   r.RateLimit,
	}
}

type CreateServiceResponse struct {
	*model.ServiceIdentity
	Secret string `json:"secret"`
}
