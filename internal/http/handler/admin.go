package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/approvals/internal/http/dto"
	"basegraph.app/approvals/internal/service"
)

// AdminHandler provisions service identities for operators.
type AdminHandler struct {
	identities service.ServiceIdentityService
}

func NewAdminHandler(identities service.ServiceIdentityService) *AdminHandler {
	return &AdminHandler{identities: identities}
}

// CreateService returns the generated secret exactly once.
func (h *AdminHandler) CreateService(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	identity, secret, err := h.identities.Create(ctx, req.Params())
	if err != nil {
		respondError(c, err, "failed to create service")
		return
	}

	slog.InfoContext(ctx, "service identity created via admin API",
		"service_id", identity.ID,
		"name", identity.Name,
	)

	c.JSON(http.StatusCreated, dto.OK(dto.CreateServiceResponse{ServiceIdentity: identity, Secret: secret}))
}

func (h *AdminHandler) DeactivateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	identity, err := h.identities.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to deactivate service")
		return
	}

	c.JSON(http.StatusOK, dto.OK(identity))
}
