package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arsipkita/esurat-api/internal/models"
)

type dashboardOutgoingStub struct {
	counts       models.StatusCounts
	signedByUser map[string]int
}

func (s *dashboardOutgoingStub) CountsByStatus(ctx context.Context) (*models.StatusCounts, error) {
	counts := s.counts
	return &counts, nil
}

func (s *dashboardOutgoingStub) CountSignedBy(ctx context.Context, chairmanID string) (int, error) {
	return s.signedByUser[chairmanID], nil
}

func (s *dashboardOutgoingStub) Recent(ctx context.Context, limit int) ([]models.OutgoingLetter, error) {
	return []models.OutgoingLetter{{ID: "letter-1"}}, nil
}

type dashboardIncomingStub struct {
	count int
}

func (s *dashboardIncomingStub) Count(ctx context.Context) (int, error) {
	return s.count, nil
}

func (s *dashboardIncomingStub) Recent(ctx context.Context, limit int) ([]models.IncomingLetter, error) {
	return []models.IncomingLetter{{ID: "in-1"}}, nil
}

func newDashboardService() *DashboardService {
	outgoing := &dashboardOutgoingStub{
		counts: models.StatusCounts{
			Draft:            2,
			PendingSecretary: 3,
			PendingChairman:  4,
			Signed:           5,
			Rejected:         1,
		},
		signedByUser: map[string]int{"user-chm": 5},
	}
	incoming := &dashboardIncomingStub{count: 9}
	return NewDashboardService(outgoing, incoming, nil, 0, nil)
}

func TestDashboardOverviewForStaff(t *testing.T) {
	svc := newDashboardService()

	resp, err := svc.Overview(context.Background(), Actor{ID: "user-staff", Role: models.RoleStaff})
	require.NoError(t, err)
	require.Equal(t, models.RoleStaff, resp.UserRole)
	require.Equal(t, 9, *resp.Stats.IncomingLetters)
	require.Equal(t, 15, *resp.Stats.OutgoingLetters)
	require.Equal(t, 7, *resp.Stats.PendingApproval)
	require.Equal(t, 5, *resp.Stats.SignedLetters)
	require.Nil(t, resp.Stats.PendingMySignature)
	require.Len(t, resp.RecentOutgoing, 1)
	require.Len(t, resp.RecentIncoming, 1)
}

func TestDashboardOverviewForSecretary(t *testing.T) {
	svc := newDashboardService()

	resp, err := svc.Overview(context.Background(), Actor{ID: "user-sec", Role: models.RoleSecretary})
	require.NoError(t, err)
	require.Equal(t, 3, *resp.Stats.PendingApproval)
	require.Equal(t, 5, *resp.Stats.SignedLetters)
}

func TestDashboardOverviewForChairman(t *testing.T) {
	svc := newDashboardService()

	resp, err := svc.Overview(context.Background(), Actor{ID: "user-chm", Role: models.RoleChairman})
	require.NoError(t, err)
	require.Equal(t, 4, *resp.Stats.PendingMySignature)
	require.Equal(t, 5, *resp.Stats.SignedByMe)
	require.Nil(t, resp.Stats.IncomingLetters)
	require.Nil(t, resp.Stats.PendingApproval)
}
