package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlima-cursos/matricula-api/internal/models"
	"github.com/mlima-cursos/matricula-api/pkg/config"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
)

type fakeUserStore struct {
	user       *models.User
	lastLogins []time.Time
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, _ string, ts time.Time) error {
	f.lastLogins = append(f.lastLogins, ts)
	return nil
}

func authConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:     "test_secret",
		Expiration: time.Hour,
		Issuer:     "matricula-api",
	}
}

func adminUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nh4-forte"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "usr-1",
		Email:        "admin@mlimacursos.com.br",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	store := &fakeUserStore{user: adminUser(t)}
	svc := NewAuthService(store, authConfig(), zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@mlimacursos.com.br",
		Password: "s3nh4-forte",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "usr-1", resp.User.ID)
	require.Len(t, store.lastLogins, 1)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(&fakeUserStore{user: adminUser(t)}, authConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@mlimacursos.com.br",
		Password: "errada",
	})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&fakeUserStore{}, authConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "qualquer",
	})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := adminUser(t)
	user.Active = false
	svc := NewAuthService(&fakeUserStore{user: user}, authConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@mlimacursos.com.br",
		Password: "s3nh4-forte",
	})
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := NewAuthService(&fakeUserStore{user: adminUser(t)}, authConfig(), zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@mlimacursos.com.br",
		Password: "s3nh4-forte",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	assert.Equal(t, appErrors.ErrUnauthorized, err)
}
