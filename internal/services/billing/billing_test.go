package billing_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/dealshield/internal/services/billing"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
	"github.com/magabrotheeeer/dealshield/internal/stripeapi"
)

// Мок для Repository
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetDealPaid(ctx context.Context, dealID string) (bool, error) {
	args := m.Called(ctx, dealID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) SetDealSessionID(ctx context.Context, dealID, sessionID string) error {
	args := m.Called(ctx, dealID, sessionID)
	return args.Error(0)
}

func (m *RepoMock) MarkDealPaid(ctx context.Context, dealID, sessionID string, amountCents int64) error {
	args := m.Called(ctx, dealID, sessionID, amountCents)
	return args.Error(0)
}

// Мок для CheckoutProvider
type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, params stripeapi.CreateCheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeapi.CheckoutSession), args.Error(1)
}

func newService(repo *RepoMock, provider *ProviderMock) *billing.BillingService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return billing.NewBillingService(repo, provider, "price_report", "https://dealshield.pro", logger)
}

func completedEvent(t *testing.T, session stripeapi.CheckoutSession) *stripeapi.Event {
	t.Helper()
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("Failed to marshal session: %v", err)
	}
	event := &stripeapi.Event{
		ID:   "evt_1",
		Type: "checkout.session.completed",
	}
	event.Data.Object = raw
	return event
}

func TestBillingService_CreateCheckout(t *testing.T) {
	tests := []struct {
		name       string
		dealID     string
		setupMocks func(r *RepoMock, p *ProviderMock)
		wantURL    string
		wantErr    error
	}{
		{
			name:   "successful checkout",
			dealID: "deal-1",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetDealPaid", mock.Anything, "deal-1").Return(false, nil).Once()
				p.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(params stripeapi.CreateCheckoutSessionParams) bool {
					return params.PriceID == "price_report" &&
						params.SuccessURL == "https://dealshield.pro/report/deal-1?success=1" &&
						params.CancelURL == "https://dealshield.pro/paywall/deal-1?canceled=1" &&
						params.Metadata["dealId"] == "deal-1" &&
						params.Metadata["userId"] == "uid-1"
				})).Return(&stripeapi.CheckoutSession{
					ID:  "cs_123",
					URL: "https://checkout.example.com/cs_123",
				}, nil).Once()
				r.On("SetDealSessionID", mock.Anything, "deal-1", "cs_123").Return(nil).Once()
			},
			wantURL: "https://checkout.example.com/cs_123",
		},
		{
			name:   "already paid",
			dealID: "deal-1",
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("GetDealPaid", mock.Anything, "deal-1").Return(true, nil).Once()
			},
			wantErr: billing.ErrAlreadyPaid,
		},
		{
			name:   "deal not found",
			dealID: "missing",
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("GetDealPaid", mock.Anything, "missing").Return(false, repository.ErrNotFound).Once()
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name:   "provider error",
			dealID: "deal-1",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetDealPaid", mock.Anything, "deal-1").Return(false, nil).Once()
				p.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(nil, errors.New("provider unavailable")).Once()
			},
			wantErr: errors.New("provider unavailable"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			provider := new(ProviderMock)
			svc := newService(repo, provider)

			tt.setupMocks(repo, provider)

			url, err := svc.CreateCheckout(context.Background(), "uid-1", tt.dealID)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}

			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestBillingService_Status(t *testing.T) {
	tests := []struct {
		name       string
		dealID     string
		setupMocks func(r *RepoMock)
		wantPaid   bool
		wantErr    bool
	}{
		{
			name:   "paid deal",
			dealID: "deal-1",
			setupMocks: func(r *RepoMock) {
				r.On("GetDealPaid", mock.Anything, "deal-1").Return(true, nil).Once()
			},
			wantPaid: true,
		},
		{
			name:   "unknown deal is unpaid",
			dealID: "missing",
			setupMocks: func(r *RepoMock) {
				r.On("GetDealPaid", mock.Anything, "missing").Return(false, repository.ErrNotFound).Once()
			},
			wantPaid: false,
		},
		{
			name:   "storage error",
			dealID: "deal-1",
			setupMocks: func(r *RepoMock) {
				r.On("GetDealPaid", mock.Anything, "deal-1").Return(false, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			provider := new(ProviderMock)
			svc := newService(repo, provider)

			tt.setupMocks(repo)

			paid, err := svc.Status(context.Background(), tt.dealID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantPaid, paid)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestBillingService_ProcessWebhookEvent(t *testing.T) {
	session := stripeapi.CheckoutSession{
		ID:          "cs_123",
		AmountTotal: 1999,
		Metadata:    map[string]string{"dealId": "deal-1", "userId": "uid-1"},
	}

	t.Run("checkout completed marks deal paid", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)
		svc := newService(repo, provider)

		repo.On("MarkDealPaid", mock.Anything, "deal-1", "cs_123", int64(1999)).Return(nil).Once()

		err := svc.ProcessWebhookEvent(context.Background(), completedEvent(t, session))
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate delivery is idempotent", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)
		svc := newService(repo, provider)

		// MarkDealPaid идемпотентен на уровне SQL, сервис просто вызывает
		// его повторно.
		repo.On("MarkDealPaid", mock.Anything, "deal-1", "cs_123", int64(1999)).Return(nil).Twice()

		assert.NoError(t, svc.ProcessWebhookEvent(context.Background(), completedEvent(t, session)))
		assert.NoError(t, svc.ProcessWebhookEvent(context.Background(), completedEvent(t, session)))
		repo.AssertExpectations(t)
	})

	t.Run("other event types are ignored", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)
		svc := newService(repo, provider)

		event := &stripeapi.Event{ID: "evt_2", Type: "payment_intent.created"}
		assert.NoError(t, svc.ProcessWebhookEvent(context.Background(), event))
		repo.AssertNotCalled(t, "MarkDealPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing dealId metadata is ignored", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)
		svc := newService(repo, provider)

		event := completedEvent(t, stripeapi.CheckoutSession{ID: "cs_456"})
		assert.NoError(t, svc.ProcessWebhookEvent(context.Background(), event))
		repo.AssertNotCalled(t, "MarkDealPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
