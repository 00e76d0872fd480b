package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type verificationStoreStub struct {
	records map[string]*models.VerificationRecord
}

func (s *verificationStoreStub) FindByQRCode(ctx context.Context, token string) (*models.VerificationRecord, error) {
	if record, ok := s.records[token]; ok {
		return record, nil
	}
	return nil, sql.ErrNoRows
}

func TestVerificationServiceVerify(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	secName := "Siti"
	chmName := "Budi"
	store := &verificationStoreStub{records: map[string]*models.VerificationRecord{
		"token-abc": {
			ID:              "letter-1",
			LetterNumber:    "SK-007/03/2025",
			Subject:         "Penetapan pengurus",
			Recipient:       "Dinas Pendidikan",
			Content:         "Isi surat",
			LetterDate:      now,
			Status:          models.StatusSigned,
			LetterTypeName:  "Surat Keputusan",
			SecretaryName:   &secName,
			SecretarySignAt: &now,
			ChairmanName:    &chmName,
			ChairmanSignAt:  &now,
			QRCode:          "token-abc",
		},
	}}
	svc := NewVerificationService(store, nil, nil)

	view, err := svc.Verify(context.Background(), "token-abc")
	require.NoError(t, err)
	require.True(t, view.Verified)
	require.Equal(t, "SK-007/03/2025", view.LetterNumber)
	require.Equal(t, "2025-03-10", view.LetterDate)
	require.Equal(t, "Surat Keputusan", view.LetterType)
	require.Equal(t, &chmName, view.ChairmanSigner)
}

func TestVerificationServiceUnknownToken(t *testing.T) {
	store := &verificationStoreStub{records: map[string]*models.VerificationRecord{}}
	svc := NewVerificationService(store, nil, nil)

	_, err := svc.Verify(context.Background(), "nope")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Verify(context.Background(), "")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
