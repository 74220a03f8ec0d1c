// Package otpsend реализует HTTP-обработчик запроса одноразового кода входа.
//
// Handler принимает JSON с email, генерирует код через сервис аутентификации
// и отвечает подтверждением отправки. Код уходит письмом, в ответе он
// не возвращается.
package otpsend

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

// Handler управляет HTTP-запросами на отправку кода подтверждения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики выдачи кода.
type Service interface {
	RequestCode(ctx context.Context, email string) error
}

// Request тело запроса.
type Request struct {
	Email string `json:"email" validate:"required,email"`
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
// @Summary Запросить одноразовый код входа
// @Description Генерирует 6-значный код, действительный 15 минут, и отправляет его на email.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} map[string]any "Код отправлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или email"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/otp/send [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.otpsend"
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

	if err := h.service.RequestCode(r.Context(), req.Email); err != nil {
		log.Error("failed to request code", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to generate verification code"))
		return
	}

	log.Info("verification code requested", slog.String("email", req.Email))
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Code sent",
	})
}
