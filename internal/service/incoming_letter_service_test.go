package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type incomingStoreStub struct {
	letters map[string]*models.IncomingLetter
	nextID  int
}

func newIncomingStoreStub() *incomingStoreStub {
	return &incomingStoreStub{letters: make(map[string]*models.IncomingLetter)}
}

func (s *incomingStoreStub) Create(ctx context.Context, letter *models.IncomingLetter) error {
	s.nextID++
	letter.ID = "in-1"
	stored := *letter
	s.letters[letter.ID] = &stored
	return nil
}

func (s *incomingStoreStub) GetByID(ctx context.Context, id string) (*models.IncomingLetter, error) {
	if letter, ok := s.letters[id]; ok {
		copy := *letter
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *incomingStoreStub) List(ctx context.Context, filter models.IncomingLetterFilter) ([]models.IncomingLetter, *models.Pagination, error) {
	result := make([]models.IncomingLetter, 0, len(s.letters))
	for _, letter := range s.letters {
		result = append(result, *letter)
	}
	return result, &models.Pagination{Page: 1, PageSize: 15, TotalCount: len(result)}, nil
}

func (s *incomingStoreStub) Update(ctx context.Context, letter *models.IncomingLetter) error {
	if _, ok := s.letters[letter.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *letter
	s.letters[letter.ID] = &copy
	return nil
}

func (s *incomingStoreStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.letters[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.letters, id)
	return nil
}

func incomingRequest() dto.CreateIncomingLetterRequest {
	return dto.CreateIncomingLetterRequest{
		LetterNumber: "421/DS/2025",
		Sender:       "Dinas Sosial",
		Subject:      "Undangan rapat koordinasi",
		ReceivedDate: "2025-03-10",
		LetterDate:   "2025-03-08",
		Priority:     models.PriorityNormal,
		Status:       models.IncomingReceived,
	}
}

func TestIncomingLetterServiceCRUD(t *testing.T) {
	store := newIncomingStoreStub()
	audit := &auditStub{}
	svc := NewIncomingLetterService(store, audit, nil, nil, nil)
	actor := Actor{ID: "user-staff", Role: models.RoleStaff}

	letter, err := svc.Create(context.Background(), actor, incomingRequest())
	require.NoError(t, err)
	require.Equal(t, "user-staff", letter.ReceivedBy)
	require.Len(t, audit.logs, 1)

	found, err := svc.Get(context.Background(), letter.ID)
	require.NoError(t, err)
	require.Equal(t, "Dinas Sosial", found.Sender)

	updated, err := svc.Update(context.Background(), actor, letter.ID, dto.UpdateIncomingLetterRequest{
		Sender:     "Dinas Sosial Provinsi",
		Subject:    "Undangan rapat koordinasi",
		LetterDate: "2025-03-08",
		Priority:   models.PriorityHigh,
		Status:     models.IncomingProcessing,
	})
	require.NoError(t, err)
	require.Equal(t, models.IncomingProcessing, updated.Status)

	require.NoError(t, svc.Delete(context.Background(), actor, letter.ID))
	_, err = svc.Get(context.Background(), letter.ID)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestIncomingLetterServiceValidation(t *testing.T) {
	svc := NewIncomingLetterService(newIncomingStoreStub(), nil, nil, nil, nil)
	actor := Actor{ID: "user-staff", Role: models.RoleStaff}

	req := incomingRequest()
	req.ReceivedDate = "bad-date"
	_, err := svc.Create(context.Background(), actor, req)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req = incomingRequest()
	req.Status = "lost"
	_, err = svc.Create(context.Background(), actor, req)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = svc.Delete(context.Background(), actor, "missing")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
