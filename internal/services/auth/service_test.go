package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/utils"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockAccountRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newAccount(t *testing.T, password string) *models.Account {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	account := &models.Account{
		Email:        "owner@demo.test",
		Password:     string(hashed),
		ShopID:       3,
		Role:         models.RoleMerchant,
		Status:       models.AccountStatusActive,
		TokenVersion: 2,
	}
	account.ID = 11
	return account
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	account := newAccount(t, "s3cret!pass")

	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*MockAccountRepository)
		wantErr   error
	}{
		{
			name:     "successful login",
			email:    "owner@demo.test",
			password: "s3cret!pass",
			setupMock: func(repo *MockAccountRepository) {
				repo.On("GetByEmail", ctx, "owner@demo.test").Return(account, nil)
				repo.On("TouchLastLogin", ctx, uint(11), mock.Anything).Return(nil)
			},
		},
		{
			name:     "wrong password",
			email:    "owner@demo.test",
			password: "nope",
			setupMock: func(repo *MockAccountRepository) {
				repo.On("GetByEmail", ctx, "owner@demo.test").Return(account, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "ghost@demo.test",
			password: "whatever",
			setupMock: func(repo *MockAccountRepository) {
				repo.On("GetByEmail", ctx, "ghost@demo.test").Return(nil, repositories.ErrNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAccountRepository)
			tt.setupMock(repo)

			s := NewService(repo, "access-secret", "refresh-secret", nil)
			got, tokens, err := s.Login(ctx, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(11), got.ID)

				claims, err := utils.ParseToken(tokens.AccessToken, utils.TokenAccess, "access-secret")
				require.NoError(t, err)
				assert.Equal(t, uint(3), claims.ShopID)
				assert.Equal(t, 2, claims.TokenVersion)
				assert.True(t, claims.HasPermission(models.PermissionBillingWrite))

				_, err = utils.ParseToken(tokens.RefreshToken, utils.TokenAccess, "access-secret")
				assert.Error(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_LoginDisabledAccount(t *testing.T) {
	ctx := context.Background()
	account := newAccount(t, "s3cret!pass")
	account.Status = models.AccountStatusDisabled

	repo := new(MockAccountRepository)
	repo.On("GetByEmail", ctx, account.Email).Return(account, nil)

	_, _, err := NewService(repo, "a", "r", nil).Login(ctx, account.Email, "s3cret!pass")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()
	account := newAccount(t, "pw")

	repo := new(MockAccountRepository)
	s := NewService(repo, "access-secret", "refresh-secret", nil)

	refresh, err := utils.GenerateToken(models.AccountClaims{AccountID: 11, TokenVersion: 2}, utils.TokenRefresh, "refresh-secret", time.Hour, time.Now())
	require.NoError(t, err)

	repo.On("GetByID", ctx, uint(11)).Return(account, nil).Once()
	tokens, err := s.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	// Logged out since the token was issued.
	revoked := *account
	revoked.TokenVersion = 3
	repo.On("GetByID", ctx, uint(11)).Return(&revoked, nil).Once()
	_, err = s.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = s.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	access, err := utils.GenerateToken(models.AccountClaims{AccountID: 11, TokenVersion: 2}, utils.TokenAccess, "refresh-secret", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = s.Refresh(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	repo.AssertExpectations(t)
}

func TestService_LogoutAndTokenVersion(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccountRepository)
	repo.On("IncrementTokenVersion", ctx, uint(11)).Return(nil)
	repo.On("GetByID", ctx, uint(11)).Return(newAccount(t, "pw"), nil)

	s := NewService(repo, "a", "r", nil)
	require.NoError(t, s.Logout(ctx, 11))

	version, err := s.TokenVersion(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}
