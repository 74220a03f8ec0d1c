// Package analyze реализует HTTP-обработчик генерации отчёта по сделке.
//
// Для неоплаченной сделки возвращается флаг requiresPayment без обращения
// к модели. Для оплаченной — готовый отчёт из кеша, хранилища или свежая
// генерация.
package analyze

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
	analysisservice "github.com/magabrotheeeer/dealshield/internal/services/analysis"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

// Handler управляет HTTP-запросами анализа сделки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс генерации отчёта.
type Service interface {
	Analyze(ctx context.Context, userUID, role, dealID string) (*analysisservice.Result, error)
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
// @Summary Сгенерировать отчёт по сделке
// @Description Возвращает отчёт о рисках сделки либо requiresPayment, если сделка не оплачена.
// @Tags Analysis
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "ID сделки"
// @Success 200 {object} map[string]any "Отчёт или требование оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сделка не найдена"
// @Router /deals/analyze [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deal.analyze"
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
	role, _ := r.Context().Value(middlewarectx.Role).(string)

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

	result, err := h.service.Analyze(r.Context(), uid, role, req.DealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("deal not found", slog.String("deal_id", req.DealID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("deal not found"))
			return
		}
		log.Error("failed to analyze deal", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not analyze deal"))
		return
	}

	if result.RequiresPayment {
		render.JSON(w, r, map[string]any{
			"requiresPayment": true,
		})
		return
	}

	log.Info("report ready", slog.String("deal_id", req.DealID))
	render.JSON(w, r, map[string]any{
		"report": result.Report,
	})
}
