package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	"github.com/arsipkita/esurat-api/internal/service"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
	"github.com/arsipkita/esurat-api/pkg/response"
)

type outgoingLetterService interface {
	Create(ctx context.Context, actor service.Actor, req dto.CreateOutgoingLetterRequest) (*models.OutgoingLetter, error)
	Get(ctx context.Context, actor service.Actor, id string) (*dto.OutgoingLetterResponse, error)
	List(ctx context.Context, actor service.Actor, filter dto.OutgoingLetterFilter) ([]dto.OutgoingLetterResponse, *models.Pagination, error)
	Update(ctx context.Context, actor service.Actor, id string, req dto.UpdateOutgoingLetterRequest) (*models.OutgoingLetter, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
	Submit(ctx context.Context, actor service.Actor, id string) (*models.OutgoingLetter, error)
	Sign(ctx context.Context, actor service.Actor, id string) (*models.OutgoingLetter, error)
	Reject(ctx context.Context, actor service.Actor, id string, req dto.RejectLetterRequest) (*models.OutgoingLetter, error)
}

type letterPDFService interface {
	SignedURL(ctx context.Context, id string) (*dto.LetterPDFURLResponse, error)
}

// OutgoingLetterHandler exposes REST endpoints for the outgoing letter workflow.
type OutgoingLetterHandler struct {
	service outgoingLetterService
	pdf     letterPDFService
}

// NewOutgoingLetterHandler constructs the handler.
func NewOutgoingLetterHandler(service outgoingLetterService, pdf letterPDFService) *OutgoingLetterHandler {
	return &OutgoingLetterHandler{service: service, pdf: pdf}
}

// Create godoc
// @Summary Draft a new outgoing letter
// @Tags OutgoingLetters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateOutgoingLetterRequest true "Letter payload"
// @Success 201 {object} response.Envelope
// @Router /outgoing-letters [post]
func (h *OutgoingLetterHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateOutgoingLetterRequest
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
// @Summary List outgoing letters
// @Tags OutgoingLetters
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search letter number, recipient or subject"
// @Param status query string false "Workflow status"
// @Param letter_type_id query string false "Letter type"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /outgoing-letters [get]
func (h *OutgoingLetterHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := dto.OutgoingLetterFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		Status:       models.LetterStatus(strings.TrimSpace(c.Query("status"))),
		LetterTypeID: strings.TrimSpace(c.Query("letter_type_id")),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 15),
	}
	letters, pagination, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letters, pagination)
}

// Get godoc
// @Summary Get outgoing letter detail
// @Tags OutgoingLetters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Success 200 {object} response.Envelope
// @Router /outgoing-letters/{id} [get]
func (h *OutgoingLetterHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	letter, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter, nil)
}

// Update godoc
// @Summary Update a draft letter
// @Tags OutgoingLetters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Param payload body dto.UpdateOutgoingLetterRequest true "Letter payload"
// @Success 200 {object} response.Envelope
// @Router /outgoing-letters/{id} [put]
func (h *OutgoingLetterHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateOutgoingLetterRequest
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
// @Summary Delete a draft letter
// @Tags OutgoingLetters
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Success 204
// @Router /outgoing-letters/{id} [delete]
func (h *OutgoingLetterHandler) Delete(c *gin.Context) {
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

// Submit godoc
// @Summary Submit a draft into the approval chain
// @Tags OutgoingLetters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Success 200 {object} response.Envelope
// @Router /outgoing-letters/{id}/submissions [post]
func (h *OutgoingLetterHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	letter, err := h.service.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter, nil)
}

// Sign godoc
// @Summary Sign a pending letter at the actor's stage
// @Tags OutgoingLetters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Success 200 {object} response.Envelope
// @Router /outgoing-letters/{id}/signatures [post]
func (h *OutgoingLetterHandler) Sign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	letter, err := h.service.Sign(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter, nil)
}

// Reject godoc
// @Summary Reject a pending letter with a reason
// @Tags OutgoingLetters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Param payload body dto.RejectLetterRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /outgoing-letters/{id}/rejections [post]
func (h *OutgoingLetterHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RejectLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rejection payload"))
		return
	}
	letter, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter, nil)
}

// PDFURL godoc
// @Summary Issue a time-limited download link for a signed letter
// @Tags OutgoingLetters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Letter ID"
// @Success 200 {object} response.Envelope
// @Router /outgoing-letters/{id}/pdf-url [get]
func (h *OutgoingLetterHandler) PDFURL(c *gin.Context) {
	if h.pdf == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "pdf rendering is disabled"))
		return
	}
	if _, ok := actorFromContext(c); !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	url, err := h.pdf.SignedURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, url, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
