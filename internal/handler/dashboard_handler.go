package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/service"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
	"github.com/arsipkita/esurat-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, actor service.Actor) (*dto.DashboardResponse, error)
}

// DashboardHandler exposes the role-aware landing page aggregate.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview godoc
// @Summary Get dashboard statistics for the authenticated user
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
