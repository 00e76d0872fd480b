package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/middleware"
	"github.com/arsipkita/esurat-api/internal/models"
	"github.com/arsipkita/esurat-api/internal/service"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type fakeOutgoingSrv struct {
	letter    *models.OutgoingLetter
	response  *dto.OutgoingLetterResponse
	err       error
	lastActor service.Actor
	lastID    string
	rejectReq dto.RejectLetterRequest
}

func (f *fakeOutgoingSrv) Create(_ context.Context, actor service.Actor, _ dto.CreateOutgoingLetterRequest) (*models.OutgoingLetter, error) {
	f.lastActor = actor
	return f.letter, f.err
}

func (f *fakeOutgoingSrv) Get(_ context.Context, actor service.Actor, id string) (*dto.OutgoingLetterResponse, error) {
	f.lastActor = actor
	f.lastID = id
	return f.response, f.err
}

func (f *fakeOutgoingSrv) List(_ context.Context, actor service.Actor, _ dto.OutgoingLetterFilter) ([]dto.OutgoingLetterResponse, *models.Pagination, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, nil, f.err
	}
	return []dto.OutgoingLetterResponse{*f.response}, &models.Pagination{Page: 1, PageSize: 15, TotalCount: 1}, nil
}

func (f *fakeOutgoingSrv) Update(_ context.Context, actor service.Actor, id string, _ dto.UpdateOutgoingLetterRequest) (*models.OutgoingLetter, error) {
	f.lastActor = actor
	f.lastID = id
	return f.letter, f.err
}

func (f *fakeOutgoingSrv) Delete(_ context.Context, actor service.Actor, id string) error {
	f.lastActor = actor
	f.lastID = id
	return f.err
}

func (f *fakeOutgoingSrv) Submit(_ context.Context, actor service.Actor, id string) (*models.OutgoingLetter, error) {
	f.lastActor = actor
	f.lastID = id
	return f.letter, f.err
}

func (f *fakeOutgoingSrv) Sign(_ context.Context, actor service.Actor, id string) (*models.OutgoingLetter, error) {
	f.lastActor = actor
	f.lastID = id
	return f.letter, f.err
}

func (f *fakeOutgoingSrv) Reject(_ context.Context, actor service.Actor, id string, req dto.RejectLetterRequest) (*models.OutgoingLetter, error) {
	f.lastActor = actor
	f.lastID = id
	f.rejectReq = req
	return f.letter, f.err
}

func testContext(t *testing.T, method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func secretaryClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-sec", Role: models.RoleSecretary}
}

func TestOutgoingHandlerCreate(t *testing.T) {
	srv := &fakeOutgoingSrv{letter: &models.OutgoingLetter{ID: "letter-1", LetterNumber: "SK-001/03/2025"}}
	h := NewOutgoingLetterHandler(srv, nil)

	payload := `{"letter_type_id":"type-sk","recipient":"Dinas","subject":"Perihal","content":"Isi","letter_date":"2025-03-10","priority":"normal"}`
	c, rec := testContext(t, http.MethodPost, "/outgoing-letters", payload, secretaryClaims())
	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-sec", srv.lastActor.ID)
}

func TestOutgoingHandlerCreateRequiresAuth(t *testing.T) {
	h := NewOutgoingLetterHandler(&fakeOutgoingSrv{}, nil)
	c, rec := testContext(t, http.MethodPost, "/outgoing-letters", `{}`, nil)
	h.Create(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOutgoingHandlerCreateRejectsBadJSON(t *testing.T) {
	h := NewOutgoingLetterHandler(&fakeOutgoingSrv{}, nil)
	c, rec := testContext(t, http.MethodPost, "/outgoing-letters", `{not-json`, secretaryClaims())
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutgoingHandlerSignPropagatesConflict(t *testing.T) {
	srv := &fakeOutgoingSrv{err: appErrors.ErrInvalidTransition}
	h := NewOutgoingLetterHandler(srv, nil)

	c, rec := testContext(t, http.MethodPost, "/outgoing-letters/letter-1/signatures", "", secretaryClaims())
	c.Params = gin.Params{{Key: "id", Value: "letter-1"}}
	h.Sign(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "letter-1", srv.lastID)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INVALID_TRANSITION", envelope.Error.Code)
}

func TestOutgoingHandlerRejectPassesReason(t *testing.T) {
	srv := &fakeOutgoingSrv{letter: &models.OutgoingLetter{ID: "letter-1", Status: models.StatusRejected}}
	h := NewOutgoingLetterHandler(srv, nil)

	c, rec := testContext(t, http.MethodPost, "/outgoing-letters/letter-1/rejections", `{"reason":"incomplete"}`, secretaryClaims())
	c.Params = gin.Params{{Key: "id", Value: "letter-1"}}
	h.Reject(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "incomplete", srv.rejectReq.Reason)
}

func TestOutgoingHandlerList(t *testing.T) {
	srv := &fakeOutgoingSrv{response: &dto.OutgoingLetterResponse{
		OutgoingLetter: models.OutgoingLetter{ID: "letter-1"},
		CanSign:        true,
	}}
	h := NewOutgoingLetterHandler(srv, nil)

	c, rec := testContext(t, http.MethodGet, "/outgoing-letters?status=pending_secretary&page=2", "", secretaryClaims())
	h.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleSecretary, srv.lastActor.Role)
}

func TestOutgoingHandlerPDFURLDisabled(t *testing.T) {
	h := NewOutgoingLetterHandler(&fakeOutgoingSrv{}, nil)
	c, rec := testContext(t, http.MethodGet, "/outgoing-letters/letter-1/pdf-url", "", secretaryClaims())
	c.Params = gin.Params{{Key: "id", Value: "letter-1"}}
	h.PDFURL(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
