package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type incomingLetterStore interface {
	Create(ctx context.Context, letter *models.IncomingLetter) error
	GetByID(ctx context.Context, id string) (*models.IncomingLetter, error)
	List(ctx context.Context, filter models.IncomingLetterFilter) ([]models.IncomingLetter, *models.Pagination, error)
	Update(ctx context.Context, letter *models.IncomingLetter) error
	Delete(ctx context.Context, id string) error
}

// IncomingLetterService manages the received correspondence register.
type IncomingLetterService struct {
	letters   incomingLetterStore
	audit     workflowAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
}

// NewIncomingLetterService constructs the service.
func NewIncomingLetterService(letters incomingLetterStore, audit workflowAuditLogger, validate *validator.Validate, logger *zap.Logger, cache *CacheService) *IncomingLetterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IncomingLetterService{letters: letters, audit: audit, validator: validate, logger: logger, cache: cache}
}

// Create records a received letter.
func (s *IncomingLetterService) Create(ctx context.Context, actor Actor, req dto.CreateIncomingLetterRequest) (*models.IncomingLetter, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid letter payload")
	}
	if !req.Priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}
	receivedDate, err := time.Parse("2006-01-02", req.ReceivedDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "received_date must be YYYY-MM-DD")
	}
	letterDate, err := time.Parse("2006-01-02", req.LetterDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "letter_date must be YYYY-MM-DD")
	}

	letter := &models.IncomingLetter{
		LetterNumber: req.LetterNumber,
		Sender:       req.Sender,
		Subject:      req.Subject,
		ReceivedDate: receivedDate,
		LetterDate:   letterDate,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		ReceivedBy:   actor.ID,
	}
	if err := s.letters.Create(ctx, letter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record incoming letter")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterCreate, letter.ID)
	s.invalidateDashboards(ctx)
	return letter, nil
}

// Get retrieves one incoming letter.
func (s *IncomingLetterService) Get(ctx context.Context, id string) (*models.IncomingLetter, error) {
	letter, err := s.letters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter")
	}
	return letter, nil
}

// List returns incoming letters with filters and pagination.
func (s *IncomingLetterService) List(ctx context.Context, filter dto.IncomingLetterFilter) ([]models.IncomingLetter, *models.Pagination, error) {
	modelFilter := models.IncomingLetterFilter{
		Search:   filter.Search,
		Status:   filter.Status,
		Priority: filter.Priority,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if modelFilter.Status != "" && !modelFilter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	letters, pagination, err := s.letters.List(ctx, modelFilter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list letters")
	}
	return letters, pagination, nil
}

// Update mutates an incoming letter record.
func (s *IncomingLetterService) Update(ctx context.Context, actor Actor, id string, req dto.UpdateIncomingLetterRequest) (*models.IncomingLetter, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid letter payload")
	}
	if !req.Priority.Valid() || !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority or status")
	}
	letterDate, err := time.Parse("2006-01-02", req.LetterDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "letter_date must be YYYY-MM-DD")
	}

	letter, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	letter.Sender = req.Sender
	letter.Subject = req.Subject
	letter.LetterDate = letterDate
	letter.Description = req.Description
	letter.Priority = req.Priority
	letter.Status = req.Status

	if err := s.letters.Update(ctx, letter); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update letter")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterUpdate, id)
	return letter, nil
}

// Delete removes an incoming letter record.
func (s *IncomingLetterService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.letters.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "letter not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete letter")
	}
	s.recordAudit(ctx, actor, models.AuditActionLetterDelete, id)
	s.invalidateDashboards(ctx)
	return nil
}

func (s *IncomingLetterService) recordAudit(ctx context.Context, actor Actor, action, resourceID string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		Resource:   "incoming_letter",
		ResourceID: &resourceID,
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *IncomingLetterService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
