// Package presign реализует HTTP-обработчик выдачи подписанного URL
// для прямой загрузки файла в хранилище, минуя сервер приложения.
package presign

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dealshield/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	dealservice "github.com/magabrotheeeer/dealshield/internal/services/deal"
)

// Handler управляет HTTP-запросами на выдачу URL загрузки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выдачи URL загрузки.
type Service interface {
	PresignUpload(ctx context.Context, userUID string) (*dealservice.PresignResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выдать URL для загрузки файла
// @Description Возвращает подписанный URL (1 час) и ключ файла для прямой загрузки в хранилище.
// @Tags Files
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dealservice.PresignResult "URL загрузки и ключ файла"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /files/presign [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.presign"
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

	result, err := h.service.PresignUpload(r.Context(), uid)
	if err != nil {
		log.Error("failed to presign upload", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create upload url"))
		return
	}

	log.Info("upload url issued", slog.String("file_key", result.FileURL))
	render.JSON(w, r, result)
}
