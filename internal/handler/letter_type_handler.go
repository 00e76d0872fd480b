package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arsipkita/esurat-api/internal/models"
	"github.com/arsipkita/esurat-api/pkg/response"
)

type letterTypeService interface {
	List(ctx context.Context, withTemplates bool) ([]models.LetterType, error)
}

// LetterTypeHandler exposes the read-only letter type catalog.
type LetterTypeHandler struct {
	service letterTypeService
}

// NewLetterTypeHandler constructs the handler.
func NewLetterTypeHandler(service letterTypeService) *LetterTypeHandler {
	return &LetterTypeHandler{service: service}
}

// List godoc
// @Summary List active letter types
// @Tags LetterTypes
// @Produce json
// @Security BearerAuth
// @Param withTemplates query bool false "Attach active templates"
// @Success 200 {object} response.Envelope
// @Router /letter-types [get]
func (h *LetterTypeHandler) List(c *gin.Context) {
	withTemplates := c.Query("withTemplates") == "true"
	types, err := h.service.List(c.Request.Context(), withTemplates)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}
