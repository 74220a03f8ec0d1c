// Package checkout реализует HTTP-обработчик создания платёжной сессии.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/dealshield/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	billingservice "github.com/magabrotheeeer/dealshield/internal/services/billing"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

// Handler управляет HTTP-запросами создания платёжной сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс создания платёжной сессии.
type Service interface {
	CreateCheckout(ctx context.Context, userUID, dealID string) (string, error)
}

// Request тело запроса.
type Request struct {
	DealID string `json:"dealId" validate:"required"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платёжную сессию
// @Description Создаёт checkout-сессию для разовой оплаты отчёта и возвращает URL оплаты.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "ID сделки"
// @Success 200 {object} map[string]any "URL платёжной страницы"
// @Failure 400 {object} response.ErrorResponse "Сделка уже оплачена или некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сделка не найдена"
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	checkoutURL, err := h.service.CreateCheckout(r.Context(), uid, req.DealID)
	if err != nil {
		switch {
		case errors.Is(err, billingservice.ErrAlreadyPaid):
			log.Info("deal already paid", slog.String("deal_id", req.DealID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Already paid"))
		case errors.Is(err, repository.ErrNotFound):
			log.Info("deal not found", slog.String("deal_id", req.DealID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("deal not found"))
		default:
			log.Error("failed to create checkout session", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create checkout session"))
		}
		return
	}

	log.Info("checkout session created", slog.String("deal_id", req.DealID))
	render.JSON(w, r, map[string]any{
		"checkoutUrl": checkoutURL,
	})
}
