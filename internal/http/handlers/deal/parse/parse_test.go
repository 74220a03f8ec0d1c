package parse

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
	dealservice "github.com/magabrotheeeer/dealshield/internal/services/deal"
)

// MockService реализует интерфейс parse.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Parse(ctx context.Context, userUID, fileKey, zip string) (*dealservice.ParseResult, error) {
	args := m.Called(ctx, userUID, fileKey, zip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dealservice.ParseResult), args.Error(1)
}

func TestParseHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешный разбор документа",
			body:    `{"fileId":"uploads/uid-1/file.pdf","zip":"94103"}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Parse", mock.Anything, "uid-1", "uploads/uid-1/file.pdf", "94103").Return(
					&dealservice.ParseResult{
						DealID: "deal-1",
						Preview: &models.Preview{
							VehicleName: "2021 Honda Accord EX",
							Price:       "$30,100",
							Mileage:     "23,411",
						},
						RiskHint: &models.RiskHint{Count: 3, Message: "We found multiple potential issues."},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"dealId":"deal-1"`,
		},
		{
			name:    "нечитаемый документ",
			body:    `{"fileId":"uploads/uid-1/blurry.pdf","zip":"94103"}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Parse", mock.Anything, "uid-1", "uploads/uid-1/blurry.pdf", "94103").
					Return(nil, dealservice.ErrExtractionFailed)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `Could not parse document. Please ensure it is a clear image of a deal sheet.`,
		},
		{
			name:           "нет пользователя в контексте",
			body:           `{"fileId":"uploads/uid-1/file.pdf","zip":"94103"}`,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "нет ключа файла",
			body:           `{"zip":"94103"}`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field FileID is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/deals/parse", strings.NewReader(tt.body))
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
