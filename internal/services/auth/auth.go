// Package auth содержит логику входа по одноразовому коду:
// выдачу и подтверждение кодов, ленивое создание учётных записей
// и вход администратора по мастер-паролю.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/magabrotheeeer/dealshield/internal/lib/jwt"
	"github.com/magabrotheeeer/dealshield/internal/lib/password"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	"github.com/magabrotheeeer/dealshield/internal/models"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

// Время жизни кода подтверждения.
const codeTTL = 15 * time.Minute

// Реквизиты единственной учётной записи администратора.
const (
	adminEmail    = "admin@dealshield.pro"
	adminUsername = "Admin Pro"
)

// Ошибки подтверждения кода и входа администратора.
var (
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Repository описывает контракт хранилища для кодов и пользователей.
type Repository interface {
	UpsertVerificationCode(ctx context.Context, code models.VerificationCode) error
	GetVerificationCode(ctx context.Context, email string) (*models.VerificationCode, error)
	DeleteVerificationCode(ctx context.Context, email string) error

	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, uid, passwordHash string) error
	SetUserRole(ctx context.Context, uid, role string) error
}

// Sender описывает отправку письма с кодом подтверждения.
type Sender interface {
	SendVerificationCode(email, code string) error
}

// AuthService отвечает за OTP-вход, вход администратора и выдачу JWT.
type AuthService struct {
	repo            Repository
	sender          Sender
	jwtMaker        jwt.Maker
	servicePassword string
	adminPassword   string
	log             *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(repo Repository, sender Sender, jwtMaker jwt.Maker, servicePassword, adminPassword string, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:            repo,
		sender:          sender,
		jwtMaker:        jwtMaker,
		servicePassword: servicePassword,
		adminPassword:   adminPassword,
		log:             log,
	}
}

// RequestCode генерирует случайный 6-значный код, сохраняет его для email
// (заменяя предыдущий) и отправляет письмом. Сбой отправки логируется,
// но не проваливает запрос: код уже существует и может быть передан
// через канал поддержки.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	const op = "auth.RequestCode"

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	record := models.VerificationCode{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(codeTTL),
	}
	if err := s.repo.UpsertVerificationCode(ctx, record); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sender.SendVerificationCode(email, code); err != nil {
		s.log.Error("failed to send verification code email", slog.String("email", email), sl.Err(err))
	}
	return nil
}

// VerifyCode сверяет код с сохранённым, удаляет его при успехе и выдаёт
// пару токенов, создавая учётную запись при первом входе (find-or-create).
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*models.TokenPair, *models.User, error) {
	const op = "auth.VerifyCode"

	record, err := s.repo.GetVerificationCode(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCode
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(record.Code) != strings.TrimSpace(code) {
		return nil, nil, ErrInvalidCode
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, nil, ErrCodeExpired
	}

	if err := s.repo.DeleteVerificationCode(ctx, email); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.resolveUser(ctx, email, models.RoleUser)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	token, refresh, err := s.jwtMaker.GenerateTokenPair(user.Email, user.Role, user.UID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.TokenPair{Token: token, RefreshToken: refresh}, user, nil
}

// AdminLogin сверяет мастер-пароль и выдаёт токены для фиксированной
// учётной записи администратора, создавая её при необходимости.
func (s *AuthService) AdminLogin(ctx context.Context, masterPassword string) (*models.TokenPair, *models.User, error) {
	const op = "auth.AdminLogin"

	if subtle.ConstantTimeCompare([]byte(masterPassword), []byte(s.adminPassword)) != 1 {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.resolveUser(ctx, adminEmail, models.RoleAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.Role != models.RoleAdmin {
		if err := s.repo.SetUserRole(ctx, user.UID, models.RoleAdmin); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		user.Role = models.RoleAdmin
	}

	token, refresh, err := s.jwtMaker.GenerateTokenPair(user.Email, user.Role, user.UID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.TokenPair{Token: token, RefreshToken: refresh}, user, nil
}

// resolveUser находит пользователя по email или создаёт его с хэшем общего
// сервисного пароля. Если у существующей записи хэш не совпадает с текущим
// сервисным паролем (секрет ротировался), хэш заменяется и вход продолжается.
// Личность уже доказана кодом из письма, поэтому запись создаётся
// подтверждённой.
func (s *AuthService) resolveUser(ctx context.Context, email, role string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		hashed, err := password.GetHash(s.servicePassword)
		if err != nil {
			return nil, err
		}
		newUser := models.User{
			Email:        email,
			Username:     usernameFor(email, role),
			PasswordHash: hashed,
			Role:         role,
		}
		uid, err := s.repo.CreateUser(ctx, newUser)
		if err != nil {
			return nil, err
		}
		newUser.UID = uid
		s.log.Info("created user", slog.String("email", email), slog.String("role", role))
		return &newUser, nil
	}

	if err := password.CompareHash(user.PasswordHash, s.servicePassword); err != nil {
		s.log.Warn("service password mismatch, resetting", slog.String("email", email))
		hashed, err := password.GetHash(s.servicePassword)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdateUserPassword(ctx, user.UID, hashed); err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	return user, nil
}

func usernameFor(email, role string) string {
	if role == models.RoleAdmin {
		return adminUsername
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// generateCode возвращает случайную 6-значную числовую строку.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
