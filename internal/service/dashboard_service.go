package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arsipkita/esurat-api/internal/dto"
	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type dashboardOutgoingStore interface {
	CountsByStatus(ctx context.Context) (*models.StatusCounts, error)
	CountSignedBy(ctx context.Context, chairmanID string) (int, error)
	Recent(ctx context.Context, limit int) ([]models.OutgoingLetter, error)
}

type dashboardIncomingStore interface {
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]models.IncomingLetter, error)
}

// DashboardService aggregates role-aware landing page statistics, cached in
// Redis for the configured TTL.
type DashboardService struct {
	outgoing dashboardOutgoingStore
	incoming dashboardIncomingStore
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(outgoing dashboardOutgoingStore, incoming dashboardIncomingStore, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{outgoing: outgoing, incoming: incoming, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Overview returns the dashboard for the given actor. Chairman dashboards
// are personal (pending my signature, signed by me) and cached per user.
func (s *DashboardService) Overview(ctx context.Context, actor Actor) (*dto.DashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:%s", actor.Role)
	if actor.Role == models.RoleChairman {
		cacheKey = fmt.Sprintf("dashboard:%s:%s", actor.Role, actor.ID)
	}

	var cached dto.DashboardResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	counts, err := s.outgoing.CountsByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count letters")
	}
	incomingCount, err := s.incoming.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count incoming letters")
	}

	stats := dto.DashboardStats{}
	outgoingTotal := counts.Draft + counts.PendingSecretary + counts.PendingChairman + counts.Signed + counts.Rejected
	pendingTotal := counts.PendingSecretary + counts.PendingChairman

	switch actor.Role {
	case models.RoleChairman:
		pendingMine := counts.PendingChairman
		signedByMe, err := s.outgoing.CountSignedBy(ctx, actor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count signed letters")
		}
		stats.PendingMySignature = &pendingMine
		stats.SignedByMe = &signedByMe
	case models.RoleSecretary:
		pendingMine := counts.PendingSecretary
		stats.IncomingLetters = &incomingCount
		stats.OutgoingLetters = &outgoingTotal
		stats.PendingApproval = &pendingMine
		stats.SignedLetters = &counts.Signed
	default:
		stats.IncomingLetters = &incomingCount
		stats.OutgoingLetters = &outgoingTotal
		stats.PendingApproval = &pendingTotal
		stats.SignedLetters = &counts.Signed
	}

	recentOutgoing, err := s.outgoing.Recent(ctx, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent letters")
	}
	recentIncoming, err := s.incoming.Recent(ctx, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent incoming letters")
	}

	response := &dto.DashboardResponse{
		Stats:          stats,
		RecentIncoming: recentIncoming,
		RecentOutgoing: recentOutgoing,
		UserRole:       actor.Role,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard", zap.Error(err))
		}
	}
	return response, nil
}
