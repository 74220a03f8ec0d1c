// Package parse реализует HTTP-обработчик разбора загруженного deal sheet.
//
// Handler передаёт файл сервису извлечения полей и возвращает идентификатор
// созданной сделки с превью. Сбой извлечения отдаётся как 400 с просьбой
// загрузить более чёткое изображение, без автоматического ретрая.
package parse

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
	dealservice "github.com/magabrotheeeer/dealshield/internal/services/deal"
)

// Handler управляет HTTP-запросами на разбор документа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики разбора документа.
type Service interface {
	Parse(ctx context.Context, userUID, fileKey, zip string) (*dealservice.ParseResult, error)
}

// Request тело запроса.
type Request struct {
	FileID string `json:"fileId" validate:"required"`
	Zip    string `json:"zip" validate:"required"`
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
// @Summary Разобрать загруженный документ
// @Description Извлекает поля из deal sheet и создаёт сделку со статусом parsed.
// @Tags Deals
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Ключ файла и почтовый индекс"
// @Success 200 {object} dealservice.ParseResult "Сделка с превью"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или нечитаемый документ"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /deals/parse [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deal.parse"
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

	result, err := h.service.Parse(r.Context(), uid, req.FileID, req.Zip)
	if err != nil {
		if errors.Is(err, dealservice.ErrExtractionFailed) {
			log.Info("document extraction failed", slog.String("file_id", req.FileID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Could not parse document. Please ensure it is a clear image of a deal sheet."))
			return
		}
		log.Error("failed to parse deal", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not parse deal"))
		return
	}

	log.Info("deal parsed", slog.String("deal_id", result.DealID))
	render.JSON(w, r, result)
}
