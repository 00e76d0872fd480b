package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type outgoingLetterStore interface {
	Create(ctx context.Context, letter *models.OutgoingLetter, typeCode string, now time.Time) error
	GetByID(ctx context.Context, id string) (*models.OutgoingLetter, error)
	List(ctx context.Context, filter models.OutgoingLetterFilter) ([]models.OutgoingLetter, *models.Pagination, error)
	UpdateDraft(ctx context.Context, letter *models.OutgoingLetter) error
	DeleteDraft(ctx context.Context, id string) error
	Submit(ctx context.Context, id string, now time.Time) error
	SignSecretary(ctx context.Context, id, actorID string, now time.Time) error
	SignChairman(ctx context.Context, id, actorID, qrCode string, now time.Time) error
	Reject(ctx context.Context, id, reason string, from models.LetterStatus, now time.Time) error
}

type letterTypeStore interface {
	GetByID(ctx context.Context, id string) (*models.LetterType, error)
	GetTemplateByID(ctx context.Context, id string) (*models.LetterTemplate, error)
}

type workflowAuditLogger interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type uniqueViolationChecker func(error) bool

type renderScheduler interface {
	EnqueueRender(letterID string)
}

// Actor identifies who performs a workflow operation, plus request metadata
// for the audit trail.
type Actor struct {
	ID        string
	Role      models.UserRole
	IP        string
	UserAgent string
}

// WorkflowConfig tunes the letter workflow behaviour.
type WorkflowConfig struct {
	NumberingMaxRetries   int
	RejectionReasonMaxLen int
}

// LetterWorkflowService orchestrates the outgoing letter lifecycle: drafting,
// numbering, the two-stage approval chain and rejection.
type LetterWorkflowService struct {
	letters   outgoingLetterStore
	types     letterTypeStore
	audit     workflowAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
	config    WorkflowConfig

	isUnique uniqueViolationChecker
	renderer renderScheduler
	cache    *CacheService
	metrics  *MetricsService
	now      func() time.Time
}

// LetterWorkflowOption configures the service.
type LetterWorkflowOption func(*LetterWorkflowService)

// WithWorkflowClock overrides the time source, mainly for tests.
func WithWorkflowClock(now func() time.Time) LetterWorkflowOption {
	return func(s *LetterWorkflowService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRenderScheduler wires the asynchronous PDF renderer.
func WithRenderScheduler(renderer renderScheduler) LetterWorkflowOption {
	return func(s *LetterWorkflowService) {
		s.renderer = renderer
	}
}

// WithWorkflowCache wires dashboard cache invalidation.
func WithWorkflowCache(cache *CacheService) LetterWorkflowOption {
	return func(s *LetterWorkflowService) {
		s.cache = cache
	}
}

// WithWorkflowMetrics wires Prometheus transition counters.
func WithWorkflowMetrics(metrics *MetricsService) LetterWorkflowOption {
	return func(s *LetterWorkflowService) {
		s.metrics = metrics
	}
}

// WithUniqueViolationChecker overrides duplicate-number detection, mainly for tests.
func WithUniqueViolationChecker(check uniqueViolationChecker) LetterWorkflowOption {
	return func(s *LetterWorkflowService) {
		if check != nil {
			s.isUnique = check
		}
	}
}

// NewLetterWorkflowService constructs the workflow service.
func NewLetterWorkflowService(
	letters outgoingLetterStore,
	types letterTypeStore,
	audit workflowAuditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
	config WorkflowConfig,
	isUnique uniqueViolationChecker,
	opts ...LetterWorkflowOption,
) *LetterWorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.NumberingMaxRetries <= 0 {
		config.NumberingMaxRetries = 3
	}
	if config.RejectionReasonMaxLen <= 0 {
		config.RejectionReasonMaxLen = 1000
	}
	if isUnique == nil {
		isUnique = func(error) bool { return false }
	}
	svc := &LetterWorkflowService{
		letters:   letters,
		types:     types,
		audit:     audit,
		validator: validate,
		logger:    logger,
		config:    config,
		isUnique:  isUnique,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create drafts a new outgoing letter. The letter number is allocated from
// the per-type/per-year counter; a duplicate collision is retried up to the
// configured budget before surfacing ErrDuplicateNumber.
func (s *LetterWorkflowService) Create(ctx context.Context, actor Actor, req dto.CreateOutgoingLetterRequest) (*models.OutgoingLetter, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid letter payload")
	}
	if !req.Priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}
	letterDate, err := time.Parse("2006-01-02", req.LetterDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "letter_date must be YYYY-MM-DD")
	}

	letterType, err := s.types.GetByID(ctx, req.LetterTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown letter type")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter type")
	}
	if !letterType.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "letter type is inactive")
	}

	if req.TemplateID != nil {
		template, err := s.types.GetTemplateByID(ctx, *req.TemplateID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown letter template")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter template")
		}
		if template.LetterTypeID != letterType.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "template does not belong to the letter type")
		}
	}

	letter := &models.OutgoingLetter{
		LetterTypeID: letterType.ID,
		TemplateID:   req.TemplateID,
		Recipient:    req.Recipient,
		Subject:      req.Subject,
		Content:      req.Content,
		TemplateData: req.TemplateData,
		LetterDate:   letterDate,
		Priority:     req.Priority,
		Status:       models.StatusDraft,
		CreatedBy:    actor.ID,
	}

	now := s.now()
	for attempt := 0; attempt < s.config.NumberingMaxRetries; attempt++ {
		err = s.letters.Create(ctx, letter, letterType.Code, now)
		if err == nil {
			break
		}
		if s.isUnique(err) {
			s.logger.Warn("letter number collision, retrying",
				zap.String("letter_type", letterType.Code),
				zap.Int("attempt", attempt+1))
			letter.ID = ""
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create letter")
	}
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateNumber, "")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterCreate, letter.ID,
		[]byte(fmt.Sprintf(`{"letter_number":%q}`, letter.LetterNumber)))
	s.invalidateDashboards(ctx)
	return letter, nil
}

// Get returns a letter together with the actor's capability flag.
func (s *LetterWorkflowService) Get(ctx context.Context, actor Actor, id string) (*dto.OutgoingLetterResponse, error) {
	letter, err := s.loadLetter(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.OutgoingLetterResponse{
		OutgoingLetter: *letter,
		CanSign:        models.CanAct(actor.Role, letter.Status),
	}, nil
}

// List returns letters visible to the actor. A chairman sees only letters
// awaiting their signature or already signed by them.
func (s *LetterWorkflowService) List(ctx context.Context, actor Actor, filter dto.OutgoingLetterFilter) ([]dto.OutgoingLetterResponse, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}

	modelFilter := models.OutgoingLetterFilter{
		Search:       filter.Search,
		Status:       filter.Status,
		LetterTypeID: filter.LetterTypeID,
		Page:         filter.Page,
		PageSize:     filter.PageSize,
	}
	if actor.Role == models.RoleChairman {
		modelFilter.ChairmanID = actor.ID
	}

	letters, pagination, err := s.letters.List(ctx, modelFilter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list letters")
	}

	responses := make([]dto.OutgoingLetterResponse, 0, len(letters))
	for _, letter := range letters {
		responses = append(responses, dto.OutgoingLetterResponse{
			OutgoingLetter: letter,
			CanSign:        models.CanAct(actor.Role, letter.Status),
		})
	}
	return responses, pagination, nil
}

// Update mutates a draft letter. Only the creator or a superadmin may edit,
// and only while the letter is still a draft.
func (s *LetterWorkflowService) Update(ctx context.Context, actor Actor, id string, req dto.UpdateOutgoingLetterRequest) (*models.OutgoingLetter, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid letter payload")
	}
	if !req.Priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}
	letterDate, err := time.Parse("2006-01-02", req.LetterDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "letter_date must be YYYY-MM-DD")
	}

	letter, err := s.loadLetter(ctx, id)
	if err != nil {
		return nil, err
	}
	if letter.Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only draft letters can be edited")
	}
	if letter.CreatedBy != actor.ID && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the creator can edit this letter")
	}

	letter.TemplateID = req.TemplateID
	letter.Recipient = req.Recipient
	letter.Subject = req.Subject
	letter.Content = req.Content
	letter.TemplateData = req.TemplateData
	letter.LetterDate = letterDate
	letter.Priority = req.Priority
	letter.UpdatedAt = s.now()

	if err := s.letters.UpdateDraft(ctx, letter); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "letter is no longer a draft")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update letter")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterUpdate, letter.ID, nil)
	return letter, nil
}

// Delete removes a draft letter. Same ownership rule as Update.
func (s *LetterWorkflowService) Delete(ctx context.Context, actor Actor, id string) error {
	letter, err := s.loadLetter(ctx, id)
	if err != nil {
		return err
	}
	if letter.Status != models.StatusDraft {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "only draft letters can be deleted")
	}
	if letter.CreatedBy != actor.ID && actor.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the creator can delete this letter")
	}

	if err := s.letters.DeleteDraft(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "letter is no longer a draft")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete letter")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterDelete, id, nil)
	s.invalidateDashboards(ctx)
	return nil
}

// Submit moves a draft into the approval chain.
func (s *LetterWorkflowService) Submit(ctx context.Context, actor Actor, id string) (*models.OutgoingLetter, error) {
	letter, err := s.loadLetter(ctx, id)
	if err != nil {
		return nil, err
	}
	if letter.Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only draft letters can be submitted")
	}

	if err := s.letters.Submit(ctx, id, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "letter is no longer a draft")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit letter")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterSubmit, id, nil)
	s.metrics.RecordTransition(string(models.StatusPendingSecretary))
	s.invalidateDashboards(ctx)
	return s.loadLetter(ctx, id)
}

// Sign advances a pending letter one stage. A secretary moves
// pending_secretary to pending_chairman; a chairman finalises
// pending_chairman to signed, which also mints the verification token and
// schedules the PDF render.
func (s *LetterWorkflowService) Sign(ctx context.Context, actor Actor, id string) (*models.OutgoingLetter, error) {
	letter, err := s.loadLetter(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gateApproval(actor, letter); err != nil {
		return nil, err
	}

	target, _ := models.SignTarget(letter.Status)
	now := s.now()

	switch target {
	case models.StatusPendingChairman:
		err = s.letters.SignSecretary(ctx, id, actor.ID, now)
	case models.StatusSigned:
		token, tokenErr := generateVerificationToken()
		if tokenErr != nil {
			return nil, appErrors.Wrap(tokenErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mint verification token")
		}
		err = s.letters.SignChairman(ctx, id, actor.ID, token, now)
		if err == nil && s.renderer != nil {
			s.renderer.EnqueueRender(id)
		}
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "letter status changed, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign letter")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterSign, id,
		[]byte(fmt.Sprintf(`{"to":%q}`, target)))
	s.metrics.RecordTransition(string(target))
	s.invalidateDashboards(ctx)
	return s.loadLetter(ctx, id)
}

// Reject moves a pending letter to the rejected terminal state with a
// mandatory reason. The same role gate as Sign applies.
func (s *LetterWorkflowService) Reject(ctx context.Context, actor Actor, id string, req dto.RejectLetterRequest) (*models.OutgoingLetter, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	if len(reason) > s.config.RejectionReasonMaxLen {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("rejection reason exceeds %d characters", s.config.RejectionReasonMaxLen))
	}

	letter, err := s.loadLetter(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gateApproval(actor, letter); err != nil {
		return nil, err
	}

	if err := s.letters.Reject(ctx, id, reason, letter.Status, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "letter status changed, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject letter")
	}

	s.recordAudit(ctx, actor, models.AuditActionLetterReject, id,
		[]byte(fmt.Sprintf(`{"reason":%q}`, reason)))
	s.metrics.RecordTransition(string(models.StatusRejected))
	s.invalidateDashboards(ctx)
	return s.loadLetter(ctx, id)
}

// gateApproval distinguishes "nothing to approve here" from "not your
// stage": a non-pending letter conflicts, a pending one at someone else's
// stage is forbidden.
func (s *LetterWorkflowService) gateApproval(actor Actor, letter *models.OutgoingLetter) error {
	if !letter.Status.Pending() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "letter is not awaiting approval")
	}
	if !models.CanAct(actor.Role, letter.Status) {
		return appErrors.Clone(appErrors.ErrForbidden, "letter is not at your approval stage")
	}
	return nil
}

func (s *LetterWorkflowService) loadLetter(ctx context.Context, id string) (*models.OutgoingLetter, error) {
	letter, err := s.letters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter")
	}
	return letter, nil
}

func (s *LetterWorkflowService) recordAudit(ctx context.Context, actor Actor, action, resourceID string, newValues []byte) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		Resource:   "outgoing_letter",
		ResourceID: &resourceID,
		NewValues:  newValues,
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *LetterWorkflowService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
