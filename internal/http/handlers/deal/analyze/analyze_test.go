package analyze

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
	"github.com/magabrotheeeer/dealshield/internal/models"
	analysisservice "github.com/magabrotheeeer/dealshield/internal/services/analysis"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

// MockService реализует интерфейс analyze.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Analyze(ctx context.Context, userUID, role, dealID string) (*analysisservice.Result, error) {
	args := m.Called(ctx, userUID, role, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysisservice.Result), args.Error(1)
}

func TestAnalyzeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	report := &models.Report{
		Score:    72,
		Category: models.CategoryFair,
		Summary:  "The doc fee is the biggest rip-off.",
	}

	tests := []struct {
		name           string
		body           string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "оплаченная сделка получает отчёт",
			body: `{"dealId":"deal-1"}`,
			role: models.RoleUser,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, "uid-1", models.RoleUser, "deal-1").
					Return(&analysisservice.Result{Report: report}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"score":72`,
		},
		{
			name: "неоплаченная сделка требует оплату",
			body: `{"dealId":"deal-1"}`,
			role: models.RoleUser,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, "uid-1", models.RoleUser, "deal-1").
					Return(&analysisservice.Result{RequiresPayment: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"requiresPayment":true`,
		},
		{
			name: "сделка не найдена",
			body: `{"dealId":"missing"}`,
			role: models.RoleUser,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, "uid-1", models.RoleUser, "missing").
					Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"deal not found"`,
		},
		{
			name:           "нет dealId",
			body:           `{}`,
			role:           models.RoleUser,
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

			req := httptest.NewRequest(http.MethodPost, "/deals/analyze", strings.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1")
			ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
			req = req.WithContext(ctx)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
