// Package status реализует HTTP-обработчик опроса статуса оплаты.
//
// Фронтенд опрашивает этот endpoint после возврата с платёжной страницы,
// пока webhook не отметит сделку оплаченной.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
)

// Handler управляет HTTP-запросами статуса оплаты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс проверки статуса оплаты.
type Service interface {
	Status(ctx context.Context, dealID string) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус оплаты сделки
// @Description Возвращает true, если сделка оплачена. Для неизвестной сделки возвращает false.
// @Tags Billing
// @Produce  json
// @Param dealId query string true "ID сделки"
// @Success 200 {object} map[string]any "Статус оплаты"
// @Failure 400 {object} response.ErrorResponse "Не передан dealId"
// @Router /billing/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	dealID := r.URL.Query().Get("dealId")
	if dealID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing dealId"))
		return
	}

	paid, err := h.service.Status(r.Context(), dealID)
	if err != nil {
		log.Error("failed to check payment status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check payment status"))
		return
	}

	render.JSON(w, r, map[string]any{
		"paid": paid,
	})
}
