// Package list реализует HTTP-обработчик списка сделок пользователя
// для страницы истории.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dealshield/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	"github.com/magabrotheeeer/dealshield/internal/models"
)

const defaultLimit = 20

// Handler управляет HTTP-запросами списка сделок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс списка сделок.
type Service interface {
	List(ctx context.Context, userUID string, limit, offset int) ([]*models.Deal, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список сделок пользователя
// @Description Возвращает сделки текущего пользователя, новые первыми.
// @Tags Deals
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Максимум записей"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список сделок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /deals/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deal.list"
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

	limit := defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	deals, err := h.service.List(r.Context(), uid, limit, offset)
	if err != nil {
		log.Error("failed to list deals", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list deals"))
		return
	}

	render.JSON(w, r, map[string]any{
		"deals": deals,
	})
}
