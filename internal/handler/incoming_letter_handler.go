package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	"github.com/arsipkita/esurat-api/internal/service"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
	"github.com/arsipkita/esurat-api/pkg/response"
)

type incomingLetterService interface {
	Create(ctx context.Context, actor service.Actor, req dto.CreateIncomingLetterRequest) (*models.IncomingLetter, error)
	Get(ctx context.Context, id string) (*models.IncomingLetter, error)
	List(ctx context.Context, filter dto.IncomingLetterFilter) ([]models.IncomingLetter, *models.Pagination, error)
	Update(ctx context.Context, actor service.Actor, id string, req dto.UpdateIncomingLetterRequest) (*models.IncomingLetter, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// IncomingLetterHandler exposes REST endpoints for the incoming letter register.
type IncomingLetterHandler struct {
	service incomingLetterService
}

// NewIncomingLetterHandler constructs the handler.
func NewIncomingLetterHandler(service incomingLetterService) *IncomingLetterHandler {
	return &IncomingLetterHandler{service: service}
}

// Create godoc
// @Summary Record a received letter
// @Tags IncomingLetters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateIncomingLetterRequest true "Letter payload"
// @Success 201 {object} response.Envelope
// @Router /incoming-letters [post]
func (h *IncomingLetterHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateIncomingLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid letter payload"))
		return
	}
	letter, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, letter)
}

// List godoc
// @Summary List incoming letters
// @Tags IncomingLetters
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search letter number, sender or subject"
// @Param status query string false "Processing status"
// @Param priority query string false "Priority"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /incoming-letters [get]
func (h *IncomingLetterHandler) List(c *gin.Context) {
	filter := dto.IncomingLetterFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   models.IncomingStatus(strings.TrimSpace(c.Query("status"))),
		Priority: models.LetterPriority(strings.TrimSpace(c.Query("priority"))),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 15),
	}
	letters, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letters, pagination)
}

// Get godoc
// @Summary Get incoming letter detail
// @Tags IncomingLetters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Success 200 {object} response.Envelope
// @Router /incoming-letters/{id} [get]
func (h *IncomingLetterHandler) Get(c *gin.Context) {
	letter, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter, nil)
}

// Update godoc
// @Summary Update an incoming letter
// @Tags IncomingLetters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Param payload body dto.UpdateIncomingLetterRequest true "Letter payload"
// @Success 200 {object} response.Envelope
// @Router /incoming-letters/{id} [put]
func (h *IncomingLetterHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateIncomingLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid letter payload"))
		return
	}
	letter, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter, nil)
}

// Delete godoc
// @Summary Delete an incoming letter
// @Tags IncomingLetters
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Success 204
// @Router /incoming-letters/{id} [delete]
func (h *IncomingLetterHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
