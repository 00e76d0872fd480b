package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type letterTypeCatalog interface {
	ListActive(ctx context.Context, withTemplates bool) ([]models.LetterType, error)
}

// LetterTypeService exposes the read-only letter type catalog, cached since
// the catalog changes rarely.
type LetterTypeService struct {
	types  letterTypeCatalog
	cache  *CacheService
	logger *zap.Logger
}

// NewLetterTypeService constructs the service.
func NewLetterTypeService(types letterTypeCatalog, cache *CacheService, logger *zap.Logger) *LetterTypeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterTypeService{types: types, cache: cache, logger: logger}
}

// List returns active letter types, optionally with their templates attached.
func (s *LetterTypeService) List(ctx context.Context, withTemplates bool) ([]models.LetterType, error) {
	cacheKey := "letter_types:active"
	if withTemplates {
		cacheKey = "letter_types:active:templates"
	}

	var cached []models.LetterType
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	types, err := s.types.ListActive(ctx, withTemplates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list letter types")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, types, 30*time.Minute); err != nil {
			s.logger.Warn("failed to cache letter types", zap.Error(err))
		}
	}
	return types, nil
}
