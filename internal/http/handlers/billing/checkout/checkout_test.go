package checkout

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dealshield/internal/http/middlewarectx"
	billingservice "github.com/magabrotheeeer/dealshield/internal/services/billing"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

// MockService реализует интерфейс checkout.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckout(ctx context.Context, userUID, dealID string) (string, error) {
	args := m.Called(ctx, userUID, dealID)
	return args.String(0), args.Error(1)
}

func TestCheckoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание сессии",
			body: `{"dealId":"deal-1"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckout", mock.Anything, "uid-1", "deal-1").
					Return("https://checkout.example.com/cs_123", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"checkoutUrl":"https://checkout.example.com/cs_123"`,
		},
		{
			name: "сделка уже оплачена",
			body: `{"dealId":"deal-1"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckout", mock.Anything, "uid-1", "deal-1").
					Return("", billingservice.ErrAlreadyPaid)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"Already paid"`,
		},
		{
			name: "сделка не найдена",
			body: `{"dealId":"missing"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckout", mock.Anything, "uid-1", "missing").
					Return("", repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"deal not found"`,
		},
		{
			name:           "нет dealId",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field DealID is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/billing/checkout", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
