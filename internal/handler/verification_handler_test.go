package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/arsipkita/esurat-api/internal/dto"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type fakeVerificationSrv struct {
	view *dto.VerificationView
	err  error
}

func (f *fakeVerificationSrv) Verify(context.Context, string) (*dto.VerificationView, error) {
	return f.view, f.err
}

func TestVerificationHandlerFound(t *testing.T) {
	h := NewVerificationHandler(&fakeVerificationSrv{view: &dto.VerificationView{
		LetterNumber: "SK-007/03/2025",
		Verified:     true,
	}}, nil)

	c, rec := testContext(t, http.MethodGet, "/verify/token-abc", "", nil)
	c.Params = gin.Params{{Key: "qrCode", Value: "token-abc"}}
	h.Verify(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.VerificationView `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Verified)
	assert.Equal(t, "SK-007/03/2025", envelope.Data.LetterNumber)
}

func TestVerificationHandlerNotFound(t *testing.T) {
	h := NewVerificationHandler(&fakeVerificationSrv{err: appErrors.ErrNotFound}, nil)

	c, rec := testContext(t, http.MethodGet, "/verify/bad", "", nil)
	c.Params = gin.Params{{Key: "qrCode", Value: "bad"}}
	h.Verify(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerificationHandlerDownloadRequiresToken(t *testing.T) {
	h := NewVerificationHandler(&fakeVerificationSrv{}, nil)

	c, rec := testContext(t, http.MethodGet, "/letters/letter-1/pdf", "", nil)
	c.Params = gin.Params{{Key: "id", Value: "letter-1"}}
	h.DownloadPDF(c)

	// Download is disabled when no pdf service is wired.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
