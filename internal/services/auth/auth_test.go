package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	customjwt "github.com/magabrotheeeer/dealshield/internal/lib/jwt"
	"github.com/magabrotheeeer/dealshield/internal/lib/password"
	"github.com/magabrotheeeer/dealshield/internal/models"
	"github.com/magabrotheeeer/dealshield/internal/services/auth"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

// Мок для Repository
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) UpsertVerificationCode(ctx context.Context, code models.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *RepoMock) GetVerificationCode(ctx context.Context, email string) (*models.VerificationCode, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationCode), args.Error(1)
}

func (m *RepoMock) DeleteVerificationCode(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) UpdateUserPassword(ctx context.Context, uid, passwordHash string) error {
	args := m.Called(ctx, uid, passwordHash)
	return args.Error(0)
}

func (m *RepoMock) SetUserRole(ctx context.Context, uid, role string) error {
	args := m.Called(ctx, uid, role)
	return args.Error(0)
}

// Мок для Sender
type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) SendVerificationCode(email, code string) error {
	args := m.Called(email, code)
	return args.Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateTokenPair(email, role, useruid string) (string, string, error) {
	args := m.Called(email, role, useruid)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func newService(repo *RepoMock, sender *SenderMock, jwtMock *JwtMakerMock) *auth.AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewAuthService(repo, sender, jwtMock, "service-secret", "admin-secret", logger)
}

func TestAuthService_RequestCode(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		setupMocks func(r *RepoMock, s *SenderMock)
		wantErr    bool
	}{
		{
			name:  "stores code and sends email",
			email: "buyer@example.com",
			setupMocks: func(r *RepoMock, s *SenderMock) {
				r.On("UpsertVerificationCode", mock.Anything, mock.MatchedBy(func(c models.VerificationCode) bool {
					return c.Email == "buyer@example.com" &&
						len(c.Code) == 6 &&
						c.ExpiresAt.After(c.CreatedAt)
				})).Return(nil).Once()
				s.On("SendVerificationCode", "buyer@example.com", mock.AnythingOfType("string")).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name:  "send failure does not fail the request",
			email: "buyer@example.com",
			setupMocks: func(r *RepoMock, s *SenderMock) {
				r.On("UpsertVerificationCode", mock.Anything, mock.Anything).Return(nil).Once()
				s.On("SendVerificationCode", "buyer@example.com", mock.AnythingOfType("string")).
					Return(errors.New("smtp unavailable")).Once()
			},
			wantErr: false,
		},
		{
			name:  "storage error",
			email: "buyer@example.com",
			setupMocks: func(r *RepoMock, _ *SenderMock) {
				r.On("UpsertVerificationCode", mock.Anything, mock.Anything).Return(errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			sender := new(SenderMock)
			jwtMock := new(JwtMakerMock)
			svc := newService(repo, sender, jwtMock)

			tt.setupMocks(repo, sender)

			err := svc.RequestCode(context.Background(), tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			sender.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyCode(t *testing.T) {
	serviceHash, err := password.GetHash("service-secret")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	validRecord := &models.VerificationCode{
		Email:     "buyer@example.com",
		Code:      "123456",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
	expiredRecord := &models.VerificationCode{
		Email:     "buyer@example.com",
		Code:      "123456",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		ExpiresAt: time.Now().UTC().Add(-45 * time.Minute),
	}
	existingUser := &models.User{
		UID:          "uid-1",
		Email:        "buyer@example.com",
		Username:     "buyer",
		PasswordHash: serviceHash,
		Role:         models.RoleUser,
	}

	tests := []struct {
		name       string
		email      string
		code       string
		setupMocks func(r *RepoMock, j *JwtMakerMock)
		wantErr    error
		wantToken  string
	}{
		{
			name:  "first login creates user",
			email: "buyer@example.com",
			code:  "123456",
			setupMocks: func(r *RepoMock, j *JwtMakerMock) {
				r.On("GetVerificationCode", mock.Anything, "buyer@example.com").Return(validRecord, nil).Once()
				r.On("DeleteVerificationCode", mock.Anything, "buyer@example.com").Return(nil).Once()
				r.On("GetUserByEmail", mock.Anything, "buyer@example.com").Return(nil, repository.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "buyer@example.com" && u.Role == models.RoleUser && u.PasswordHash != ""
				})).Return("uid-1", nil).Once()
				j.On("GenerateTokenPair", "buyer@example.com", models.RoleUser, "uid-1").
					Return("jwt-token", "refresh-token", nil).Once()
			},
			wantToken: "jwt-token",
		},
		{
			name:  "repeat login reuses user",
			email: "buyer@example.com",
			code:  "123456",
			setupMocks: func(r *RepoMock, j *JwtMakerMock) {
				r.On("GetVerificationCode", mock.Anything, "buyer@example.com").Return(validRecord, nil).Once()
				r.On("DeleteVerificationCode", mock.Anything, "buyer@example.com").Return(nil).Once()
				r.On("GetUserByEmail", mock.Anything, "buyer@example.com").Return(existingUser, nil).Once()
				j.On("GenerateTokenPair", "buyer@example.com", models.RoleUser, "uid-1").
					Return("jwt-token", "refresh-token", nil).Once()
			},
			wantToken: "jwt-token",
		},
		{
			name:  "wrong code",
			email: "buyer@example.com",
			code:  "000000",
			setupMocks: func(r *RepoMock, _ *JwtMakerMock) {
				r.On("GetVerificationCode", mock.Anything, "buyer@example.com").Return(validRecord, nil).Once()
			},
			wantErr: auth.ErrInvalidCode,
		},
		{
			name:  "unknown email",
			email: "stranger@example.com",
			code:  "123456",
			setupMocks: func(r *RepoMock, _ *JwtMakerMock) {
				r.On("GetVerificationCode", mock.Anything, "stranger@example.com").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: auth.ErrInvalidCode,
		},
		{
			name:  "expired code",
			email: "buyer@example.com",
			code:  "123456",
			setupMocks: func(r *RepoMock, _ *JwtMakerMock) {
				r.On("GetVerificationCode", mock.Anything, "buyer@example.com").Return(expiredRecord, nil).Once()
			},
			wantErr: auth.ErrCodeExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			sender := new(SenderMock)
			jwtMock := new(JwtMakerMock)
			svc := newService(repo, sender, jwtMock)

			tt.setupMocks(repo, jwtMock)

			pair, user, err := svc.VerifyCode(context.Background(), tt.email, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, pair)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, pair.Token)
				assert.Equal(t, tt.email, user.Email)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

// Код одноразовый: повторное подтверждение после удаления записи
// возвращает ErrInvalidCode.
func TestAuthService_VerifyCode_ConsumeOnce(t *testing.T) {
	serviceHash, err := password.GetHash("service-secret")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	existingUser := &models.User{
		UID:          "uid-1",
		Email:        "buyer@example.com",
		PasswordHash: serviceHash,
		Role:         models.RoleUser,
	}
	record := &models.VerificationCode{
		Email:     "buyer@example.com",
		Code:      "123456",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}

	repo := new(RepoMock)
	sender := new(SenderMock)
	jwtMock := new(JwtMakerMock)
	svc := newService(repo, sender, jwtMock)

	repo.On("GetVerificationCode", mock.Anything, "buyer@example.com").Return(record, nil).Once()
	repo.On("DeleteVerificationCode", mock.Anything, "buyer@example.com").Return(nil).Once()
	repo.On("GetUserByEmail", mock.Anything, "buyer@example.com").Return(existingUser, nil).Once()
	jwtMock.On("GenerateTokenPair", "buyer@example.com", models.RoleUser, "uid-1").
		Return("jwt-token", "refresh-token", nil).Once()

	pair, _, err := svc.VerifyCode(context.Background(), "buyer@example.com", "123456")
	assert.NoError(t, err)
	assert.Equal(t, "jwt-token", pair.Token)

	// Запись удалена, повторная попытка с тем же кодом отклоняется.
	repo.On("GetVerificationCode", mock.Anything, "buyer@example.com").
		Return(nil, repository.ErrNotFound).Once()

	_, _, err = svc.VerifyCode(context.Background(), "buyer@example.com", "123456")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	repo.AssertExpectations(t)
}

func TestAuthService_AdminLogin(t *testing.T) {
	serviceHash, err := password.GetHash("service-secret")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	adminUser := &models.User{
		UID:          "admin-uid",
		Email:        "admin@dealshield.pro",
		Username:     "Admin Pro",
		PasswordHash: serviceHash,
		Role:         models.RoleAdmin,
	}

	tests := []struct {
		name       string
		password   string
		setupMocks func(r *RepoMock, j *JwtMakerMock)
		wantErr    error
		wantRole   string
	}{
		{
			name:     "successful login",
			password: "admin-secret",
			setupMocks: func(r *RepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "admin@dealshield.pro").Return(adminUser, nil).Once()
				j.On("GenerateTokenPair", "admin@dealshield.pro", models.RoleAdmin, "admin-uid").
					Return("jwt-token", "refresh-token", nil).Once()
			},
			wantRole: models.RoleAdmin,
		},
		{
			name:     "first login creates admin account",
			password: "admin-secret",
			setupMocks: func(r *RepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "admin@dealshield.pro").
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "admin@dealshield.pro" &&
						u.Username == "Admin Pro" &&
						u.Role == models.RoleAdmin
				})).Return("admin-uid", nil).Once()
				j.On("GenerateTokenPair", "admin@dealshield.pro", models.RoleAdmin, "admin-uid").
					Return("jwt-token", "refresh-token", nil).Once()
			},
			wantRole: models.RoleAdmin,
		},
		{
			name:       "wrong master password",
			password:   "guess",
			setupMocks: func(_ *RepoMock, _ *JwtMakerMock) {},
			wantErr:    auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			sender := new(SenderMock)
			jwtMock := new(JwtMakerMock)
			svc := newService(repo, sender, jwtMock)

			tt.setupMocks(repo, jwtMock)

			pair, user, err := svc.AdminLogin(context.Background(), tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, pair)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantRole, user.Role)
				assert.NotEmpty(t, pair.Token)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}
