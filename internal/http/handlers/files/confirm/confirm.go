// Package confirm реализует HTTP-обработчик подтверждения загрузки файла.
//
// Существование и содержимое файла не проверяются: консистентность
// делегирована внешнему хранилищу, обработчик лишь подтверждает ключ.
package confirm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
)

// Handler управляет HTTP-запросами подтверждения загрузки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс подтверждения загрузки.
type Service interface {
	ConfirmUpload(ctx context.Context, fileKey string) string
}

// Request тело запроса.
type Request struct {
	FileURL string `json:"fileUrl" validate:"required"`
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
// @Summary Подтвердить загрузку файла
// @Description Подтверждает ключ загруженного файла для последующего разбора.
// @Tags Files
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Ключ файла"
// @Success 200 {object} map[string]any "Идентификатор файла"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Router /files/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	fileID := h.service.ConfirmUpload(r.Context(), req.FileURL)
	render.JSON(w, r, map[string]any{
		"fileId": fileID,
	})
}
