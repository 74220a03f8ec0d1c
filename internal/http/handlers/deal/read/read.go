// Package read реализует HTTP-обработчик чтения сделки владельцем.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dealshield/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	"github.com/magabrotheeeer/dealshield/internal/models"
	dealservice "github.com/magabrotheeeer/dealshield/internal/services/deal"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

// Handler управляет HTTP-запросами на чтение сделки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения сделки.
type Service interface {
	Read(ctx context.Context, userUID, dealID string) (*models.Deal, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Прочитать сделку
// @Description Возвращает сделку по ID. Доступна только владельцу.
// @Tags Deals
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID сделки"
// @Success 200 {object} models.Deal "Сделка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сделка не найдена"
// @Router /deals/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deal.read"
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

	dealID := chi.URLParam(r, "id")
	if dealID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing deal id"))
		return
	}

	deal, err := h.service.Read(r.Context(), uid, dealID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, dealservice.ErrNotOwner):
			// Чужая сделка неотличима от несуществующей.
			log.Info("deal not found", slog.String("deal_id", dealID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("deal not found"))
		default:
			log.Error("failed to read deal", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read deal"))
		}
		return
	}

	render.JSON(w, r, deal)
}
