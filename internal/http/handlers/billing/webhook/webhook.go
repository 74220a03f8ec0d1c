// Package webhook реализует HTTP-обработчик платёжных событий.
//
// Подпись заголовка Stripe-Signature проверяется по сырому телу запроса
// до любого изменения состояния. Запрос с невалидной подписью отклоняется
// с 400.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	"github.com/magabrotheeeer/dealshield/internal/stripeapi"
)

const maxBodyBytes = 65536

// Handler управляет HTTP-запросами платёжных событий.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// Service описывает интерфейс обработки платёжного события.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, event *stripeapi.Event) error
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Принять платёжное событие
// @Description Проверяет подпись события и отмечает сделку оплаченной при checkout.session.completed.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Невалидная подпись или тело"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки события"
// @Router /stripe/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not read body"))
		return
	}

	event, err := stripeapi.ConstructEvent(payload, r.Header.Get("Stripe-Signature"),
		h.webhookSecret, stripeapi.DefaultTolerance)
	if err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), event); err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	log.Info("webhook event processed", slog.String("event_type", event.Type))
	render.JSON(w, r, map[string]any{
		"received": true,
	})
}
