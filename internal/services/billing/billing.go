// Package billing содержит логику оплаты отчёта: создание hosted
// checkout-сессии, чтение статуса оплаты и обработку webhook-событий
// платёжного провайдера.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/dealshield/internal/metrics"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
	"github.com/magabrotheeeer/dealshield/internal/stripeapi"
)

// ErrAlreadyPaid — попытка оплатить уже оплаченную сделку.
var ErrAlreadyPaid = errors.New("deal already paid")

// eventCheckoutCompleted — единственный тип события, меняющий состояние.
const eventCheckoutCompleted = "checkout.session.completed"

// Repository описывает контракт хранилища для платёжных операций.
type Repository interface {
	GetDealPaid(ctx context.Context, dealID string) (bool, error)
	SetDealSessionID(ctx context.Context, dealID, sessionID string) error
	MarkDealPaid(ctx context.Context, dealID, sessionID string, amountCents int64) error
}

// CheckoutProvider описывает создание checkout-сессии у провайдера.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, params stripeapi.CreateCheckoutSessionParams) (*stripeapi.CheckoutSession, error)
}

// BillingService реализует операции оплаты.
type BillingService struct {
	repo           Repository
	provider       CheckoutProvider
	priceID        string
	frontendOrigin string
	log            *slog.Logger
}

// NewBillingService создает новый экземпляр BillingService.
func NewBillingService(repo Repository, provider CheckoutProvider, priceID, frontendOrigin string, log *slog.Logger) *BillingService {
	return &BillingService{
		repo:           repo,
		provider:       provider,
		priceID:        priceID,
		frontendOrigin: frontendOrigin,
		log:            log,
	}
}

// CreateCheckout создаёт checkout-сессию для сделки и возвращает URL оплаты.
//
// Идентификаторы сделки и пользователя кладутся в metadata сессии: это
// единственный механизм, по которому webhook сопоставит платёж со сделкой.
func (s *BillingService) CreateCheckout(ctx context.Context, userUID, dealID string) (string, error) {
	const op = "billing.CreateCheckout"

	paid, err := s.repo.GetDealPaid(ctx, dealID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if paid {
		return "", ErrAlreadyPaid
	}

	session, err := s.provider.CreateCheckoutSession(ctx, stripeapi.CreateCheckoutSessionParams{
		PriceID:    s.priceID,
		SuccessURL: fmt.Sprintf("%s/report/%s?success=1", s.frontendOrigin, dealID),
		CancelURL:  fmt.Sprintf("%s/paywall/%s?canceled=1", s.frontendOrigin, dealID),
		Metadata: map[string]string{
			"dealId": dealID,
			"userId": userUID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetDealSessionID(ctx, dealID, session.ID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("checkout session created",
		slog.String("deal_id", dealID), slog.String("session_id", session.ID))
	return session.URL, nil
}

// Status возвращает флаг оплаты сделки. Неизвестная сделка считается
// неоплаченной.
func (s *BillingService) Status(ctx context.Context, dealID string) (bool, error) {
	const op = "billing.Status"

	paid, err := s.repo.GetDealPaid(ctx, dealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return paid, nil
}

// ProcessWebhookEvent применяет событие провайдера к состоянию сделки.
// Обрабатывается только завершение оплаты, остальные типы игнорируются.
// Повторная доставка того же события не меняет состояние.
func (s *BillingService) ProcessWebhookEvent(ctx context.Context, event *stripeapi.Event) error {
	const op = "billing.ProcessWebhookEvent"

	if event.Type != eventCheckoutCompleted {
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, "ignored").Inc()
		s.log.Info("ignored webhook event", slog.String("type", event.Type))
		return nil
	}

	session, err := stripeapi.SessionFromEvent(event)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, "rejected").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	dealID := session.Metadata["dealId"]
	if dealID == "" {
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, "ignored").Inc()
		s.log.Warn("checkout completed without dealId metadata", slog.String("session_id", session.ID))
		return nil
	}

	if err := s.repo.MarkDealPaid(ctx, dealID, session.ID, session.AmountTotal); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, "rejected").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.WebhookEventsTotal.WithLabelValues(event.Type, "processed").Inc()
	s.log.Info("deal marked paid",
		slog.String("deal_id", dealID), slog.String("session_id", session.ID))
	return nil
}
