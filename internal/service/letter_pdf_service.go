package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
	"github.com/arsipkita/esurat-api/pkg/export"
	"github.com/arsipkita/esurat-api/pkg/jobs"
	"github.com/arsipkita/esurat-api/pkg/storage"
)

type pdfLetterStore interface {
	GetByID(ctx context.Context, id string) (*models.OutgoingLetter, error)
	SetPDFPath(ctx context.Context, id, path string, now time.Time) error
}

type pdfTypeStore interface {
	GetByID(ctx context.Context, id string) (*models.LetterType, error)
}

type pdfUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// PDFConfig tunes the rendering pipeline.
type PDFConfig struct {
	Enabled     bool
	Letterhead  string
	Concurrency int
	MaxRetries  int
}

// LetterPDFService renders signed letters into PDF documents asynchronously
// and issues time-limited download links.
type LetterPDFService struct {
	letters  pdfLetterStore
	types    pdfTypeStore
	users    pdfUserStore
	renderer *export.LetterPDFRenderer
	storage  *storage.LocalStorage
	signer   *storage.SignedURLSigner
	metrics  *MetricsService
	logger   *zap.Logger
	config   PDFConfig

	queue *jobs.Queue
}

// NewLetterPDFService constructs the service and its render queue. Call
// Start before enqueueing work and Stop on shutdown.
func NewLetterPDFService(
	letters pdfLetterStore,
	types pdfTypeStore,
	users pdfUserStore,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	metrics *MetricsService,
	logger *zap.Logger,
	config PDFConfig,
) *LetterPDFService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LetterPDFService{
		letters:  letters,
		types:    types,
		users:    users,
		renderer: export.NewLetterPDFRenderer(),
		storage:  store,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		config:   config,
	}
	svc.queue = jobs.NewQueue("letter-pdf", svc.handleRenderJob, jobs.QueueConfig{
		Workers:    config.Concurrency,
		MaxRetries: config.MaxRetries,
		Logger:     logger,
	})
	return svc
}

// Start launches the render workers.
func (s *LetterPDFService) Start(ctx context.Context) {
	if !s.config.Enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the render workers.
func (s *LetterPDFService) Stop() {
	if !s.config.Enabled {
		return
	}
	s.queue.Stop()
}

// EnqueueRender schedules an asynchronous render for a signed letter.
func (s *LetterPDFService) EnqueueRender(letterID string) {
	if !s.config.Enabled {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: "render", Payload: letterID}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue pdf render", zap.String("letter_id", letterID), zap.Error(err))
	}
}

// SignedURL issues a time-limited download link for a rendered letter.
func (s *LetterPDFService) SignedURL(ctx context.Context, id string) (*dto.LetterPDFURLResponse, error) {
	letter, err := s.letters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter")
	}
	if letter.Status != models.StatusSigned {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only signed letters have a document")
	}
	if letter.PDFPath == nil || *letter.PDFPath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document is not rendered yet")
	}

	token, expiresAt, err := s.signer.Generate(letter.ID, *letter.PDFPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return &dto.LetterPDFURLResponse{
		URL:       fmt.Sprintf("/letters/%s/pdf?token=%s", letter.ID, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Open validates a download token and opens the rendered document.
func (s *LetterPDFService) Open(letterID, token string) (*os.File, error) {
	tokenLetterID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	if tokenLetterID != letterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match this letter")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return file, nil
}

func (s *LetterPDFService) handleRenderJob(ctx context.Context, job jobs.Job) error {
	letterID, ok := job.Payload.(string)
	if !ok {
		s.logger.Error("render job payload is not a letter id", zap.Any("payload", job.Payload))
		return nil
	}
	start := time.Now()
	if err := s.render(ctx, letterID); err != nil {
		s.metrics.ObservePDFRender("error", time.Since(start))
		return err
	}
	s.metrics.ObservePDFRender("ok", time.Since(start))
	return nil
}

func (s *LetterPDFService) render(ctx context.Context, letterID string) error {
	letter, err := s.letters.GetByID(ctx, letterID)
	if err != nil {
		return fmt.Errorf("load letter %s: %w", letterID, err)
	}
	if letter.Status != models.StatusSigned {
		// The letter was rejected or is still mid-flight, nothing to render.
		s.logger.Info("skipping render for unsigned letter", zap.String("letter_id", letterID))
		return nil
	}

	doc := export.LetterDocument{
		Letterhead:   s.config.Letterhead,
		LetterNumber: letter.LetterNumber,
		Recipient:    letter.Recipient,
		Subject:      letter.Subject,
		Content:      letter.Content,
		LetterDate:   letter.LetterDate,
	}
	if letter.QRCode != nil {
		doc.QRCode = *letter.QRCode
	}

	letterType, err := s.types.GetByID(ctx, letter.LetterTypeID)
	if err == nil {
		doc.LetterTypeName = letterType.Name
	}
	if letter.SecretarySignBy != nil {
		if secretary, err := s.users.FindByID(ctx, *letter.SecretarySignBy); err == nil {
			doc.SecretaryName = secretary.FullName
			doc.SecretarySignedAt = letter.SecretarySignAt
		}
	}
	if letter.ChairmanSignBy != nil {
		if chairman, err := s.users.FindByID(ctx, *letter.ChairmanSignBy); err == nil {
			doc.ChairmanName = chairman.FullName
			doc.ChairmanSignedAt = letter.ChairmanSignAt
		}
	}

	data, err := s.renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("render letter %s: %w", letterID, err)
	}

	relPath, err := s.storage.Save(fmt.Sprintf("%s.pdf", letter.ID), data)
	if err != nil {
		return fmt.Errorf("store letter pdf %s: %w", letterID, err)
	}

	if err := s.letters.SetPDFPath(ctx, letter.ID, relPath, time.Now().UTC()); err != nil {
		return fmt.Errorf("record letter pdf path %s: %w", letterID, err)
	}

	s.logger.Info("letter pdf rendered",
		zap.String("letter_id", letter.ID),
		zap.String("path", relPath))
	return nil
}
