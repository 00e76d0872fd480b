package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/arsipkita/esurat-api/internal/dto"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
	"github.com/arsipkita/esurat-api/pkg/response"
)

type verificationService interface {
	Verify(ctx context.Context, token string) (*dto.VerificationView, error)
}

type pdfDownloadService interface {
	Open(letterID, token string) (*os.File, error)
}

// VerificationHandler exposes the public verification and download endpoints.
type VerificationHandler struct {
	service  verificationService
	download pdfDownloadService
}

// NewVerificationHandler constructs the handler.
func NewVerificationHandler(service verificationService, download pdfDownloadService) *VerificationHandler {
	return &VerificationHandler{service: service, download: download}
}

// Verify godoc
// @Summary Verify a signed letter by its QR code
// @Tags Verification
// @Produce json
// @Param qrCode path string true "Verification code"
// @Success 200 {object} response.Envelope
// @Router /verify/{qrCode} [get]
func (h *VerificationHandler) Verify(c *gin.Context) {
	view, err := h.service.Verify(c.Request.Context(), c.Param("qrCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// DownloadPDF godoc
// @Summary Download a rendered letter using a signed token
// @Tags Verification
// @Produce application/pdf
// @Param id path string true "Letter ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /letters/{id}/pdf [get]
func (h *VerificationHandler) DownloadPDF(c *gin.Context) {
	if h.download == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "pdf rendering is disabled"))
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "download token is required"))
		return
	}
	file, err := h.download.Open(c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "document not found"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+info.Name()+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}
