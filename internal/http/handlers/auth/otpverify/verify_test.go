package otpverify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dealshield/internal/models"
	authservice "github.com/magabrotheeeer/dealshield/internal/services/auth"
)

// MockService реализует интерфейс otpverify.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) VerifyCode(ctx context.Context, email, code string) (*models.TokenPair, *models.User, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.TokenPair), args.Get(1).(*models.User), args.Error(2)
}

func TestVerifyHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное подтверждение кода",
			body: `{"email":"buyer@example.com","code":"123456"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyCode", mock.Anything, "buyer@example.com", "123456").Return(
					&models.TokenPair{Token: "jwt-token", RefreshToken: "refresh-token"},
					&models.User{UID: "uid-1", Email: "buyer@example.com", Role: models.RoleUser},
					nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"jwt-token"`,
		},
		{
			name: "неверный код",
			body: `{"email":"buyer@example.com","code":"000000"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyCode", mock.Anything, "buyer@example.com", "000000").
					Return(nil, nil, authservice.ErrInvalidCode)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"Invalid code"`,
		},
		{
			name: "истёкший код",
			body: `{"email":"buyer@example.com","code":"123456"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyCode", mock.Anything, "buyer@example.com", "123456").
					Return(nil, nil, authservice.ErrCodeExpired)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"Code expired. Please request a new one."`,
		},
		{
			name:           "некорректный email",
			body:           `{"email":"not-an-email","code":"123456"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"email":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "ошибка сервиса",
			body: `{"email":"buyer@example.com","code":"123456"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyCode", mock.Anything, "buyer@example.com", "123456").
					Return(nil, nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"login failed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/otp/verify", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
