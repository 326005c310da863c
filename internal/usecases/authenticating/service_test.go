package authenticating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	repositoryMocks "github.com/temirlan/finance-dashboard-api/infrastructure/repository/mocks"
	"github.com/temirlan/finance-dashboard-api/internal/config"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) (Authenticator, *repositoryMocks.MockUserRepository) {
	ctrl := gomock.NewController(t)
	userRepo := repositoryMocks.NewMockUserRepository(ctrl)

	service := NewService(userRepo, &config.Config{
		Auth: config.Auth{Secret: "test-secret", TokenTTLHours: 24},
	})

	return service, userRepo
}

func activeUser(t *testing.T, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &domain.User{
		ID:           "user-1",
		Name:         "Aigerim",
		Email:        "aigerim@steppe.kz",
		Company:      "Steppe Logistics",
		PasswordHash: string(hash),
		Active:       true,
		RoleID:       domain.RoleClient,
	}
}

func TestLoginUser_TokenRoundTrip(t *testing.T) {
	service, userRepo := newTestAuth(t)

	userRepo.EXPECT().GetUserByEmail("aigerim@steppe.kz").Return(activeUser(t, "s3cret!"), nil)

	token, err := service.LoginUser("  Aigerim@Steppe.kz ", "s3cret!")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.UserRoleID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestLoginUser_WrongPassword(t *testing.T) {
	service, userRepo := newTestAuth(t)

	userRepo.EXPECT().GetUserByEmail("aigerim@steppe.kz").Return(activeUser(t, "s3cret!"), nil)

	_, err := service.LoginUser("aigerim@steppe.kz", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, IsCredentialsError(err))
}

func TestLoginUser_Disabled(t *testing.T) {
	service, userRepo := newTestAuth(t)

	user := activeUser(t, "s3cret!")
	user.Active = false
	userRepo.EXPECT().GetUserByEmail("aigerim@steppe.kz").Return(user, nil)

	_, err := service.LoginUser("aigerim@steppe.kz", "s3cret!")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestLoginUser_Unknown(t *testing.T) {
	service, userRepo := newTestAuth(t)

	userRepo.EXPECT().GetUserByEmail("ghost@steppe.kz").Return(nil, nil)

	_, err := service.LoginUser("ghost@steppe.kz", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateToken_Garbage(t *testing.T) {
	service, _ := newTestAuth(t)

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}
