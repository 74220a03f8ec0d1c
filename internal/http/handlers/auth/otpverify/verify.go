// Package otpverify реализует HTTP-обработчик подтверждения одноразового кода.
//
// Handler сверяет код с сохранённым и при успехе возвращает пару токенов
// и данные пользователя. Несовпадение и истечение кода различаются
// в сообщении об ошибке, но оба отвечают статусом 400.
package otpverify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/dealshield/internal/http/response"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	"github.com/magabrotheeeer/dealshield/internal/models"
	authservice "github.com/magabrotheeeer/dealshield/internal/services/auth"
)

// Handler управляет HTTP-запросами на подтверждение кода.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подтверждения кода.
type Service interface {
	VerifyCode(ctx context.Context, email, code string) (*models.TokenPair, *models.User, error)
}

// Request тело запроса.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
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
// @Summary Подтвердить одноразовый код
// @Description Проверяет код и возвращает пару access/refresh токенов. Код одноразовый: повторная отправка того же кода отклоняется.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и код"
// @Success 200 {object} map[string]any "Токены и данные пользователя"
// @Failure 400 {object} response.ErrorResponse "Неверный или истёкший код"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/otp/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.otpverify"
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

	tokens, user, err := h.service.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidCode):
			log.Info("invalid code submitted", slog.String("email", req.Email))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid code"))
		case errors.Is(err, authservice.ErrCodeExpired):
			log.Info("expired code submitted", slog.String("email", req.Email))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Code expired. Please request a new one."))
		default:
			log.Error("failed to verify code", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("login failed"))
		}
		return
	}

	log.Info("login successful", slog.String("email", req.Email))
	render.JSON(w, r, map[string]any{
		"token":        tokens.Token,
		"refreshToken": tokens.RefreshToken,
		"user": map[string]any{
			"id":    user.UID,
			"email": user.Email,
		},
	})
}
