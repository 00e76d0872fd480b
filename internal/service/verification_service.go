package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type verificationStore interface {
	FindByQRCode(ctx context.Context, token string) (*models.VerificationRecord, error)
}

// VerificationService backs the public, unauthenticated letter verification
// endpoint. It only ever exposes signed letters.
type VerificationService struct {
	letters verificationStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewVerificationService constructs the service.
func NewVerificationService(letters verificationStore, metrics *MetricsService, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{letters: letters, metrics: metrics, logger: logger}
}

// Verify resolves a verification token to its signed letter. An unknown or
// unsigned token yields ErrNotFound with no further detail.
func (s *VerificationService) Verify(ctx context.Context, token string) (*dto.VerificationView, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "verification code is required")
	}

	record, err := s.letters.FindByQRCode(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordVerification(false)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found or not signed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify letter")
	}

	s.metrics.RecordVerification(true)
	view := &dto.VerificationView{
		LetterNumber:      record.LetterNumber,
		Subject:           record.Subject,
		Recipient:         record.Recipient,
		Content:           record.Content,
		LetterDate:        record.LetterDate.Format("2006-01-02"),
		LetterType:        record.LetterTypeName,
		SecretarySigner:   record.SecretaryName,
		SecretarySignedAt: record.SecretarySignAt,
		ChairmanSigner:    record.ChairmanName,
		ChairmanSignedAt:  record.ChairmanSignAt,
		QRCode:            record.QRCode,
		Verified:          true,
	}
	return view, nil
}
