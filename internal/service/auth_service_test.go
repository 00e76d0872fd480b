package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arsipkita/esurat-api/internal/models"
	appErrors "github.com/arsipkita/esurat-api/pkg/errors"
)

type userRepoStub struct {
	users     map[string]*models.User
	lastLogin map[string]time.Time
}

func newUserRepoStub(t *testing.T) *userRepoStub {
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &userRepoStub{
		users: map[string]*models.User{
			"sec@arsipkita.id": {
				ID:           "user-sec",
				Email:        "sec@arsipkita.id",
				PasswordHash: string(hash),
				FullName:     "Siti Sekretaris",
				Role:         models.RoleSecretary,
				Active:       true,
			},
			"off@arsipkita.id": {
				ID:           "user-off",
				Email:        "off@arsipkita.id",
				PasswordHash: string(hash),
				FullName:     "Nonaktif",
				Role:         models.RoleStaff,
				Active:       false,
			},
		},
		lastLogin: make(map[string]time.Time),
	}
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

func newAuthService(t *testing.T) (*AuthService, *userRepoStub, *auditStub) {
	repo := newUserRepoStub(t)
	audit := &auditStub{}
	svc := NewAuthService(repo, audit, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "esurat-api",
	})
	return svc, repo, audit
}

func TestAuthServiceLogin(t *testing.T) {
	svc, repo, audit := newAuthService(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "sec@arsipkita.id",
		Password: "rahasia123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, models.RoleSecretary, resp.User.Role)
	require.Contains(t, repo.lastLogin, "user-sec")
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionLogin, audit.logs[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-sec", claims.UserID)
	require.Equal(t, models.RoleSecretary, claims.Role)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "sec@arsipkita.id", Password: "salah"})
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@arsipkita.id", Password: "rahasia123"})
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "off@arsipkita.id", Password: "rahasia123"})
	require.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthService(t)
	_, err := svc.ValidateToken("not.a.token")
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
