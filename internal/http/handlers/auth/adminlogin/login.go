// Package adminlogin реализует HTTP-обработчик входа администратора
// по мастер-паролю. Возвращает ту же пару токенов, что и OTP-вход.
package adminlogin

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

// Handler управляет HTTP-запросами входа администратора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики входа администратора.
type Service interface {
	AdminLogin(ctx context.Context, masterPassword string) (*models.TokenPair, *models.User, error)
}

// Request тело запроса.
type Request struct {
	Password string `json:"password" validate:"required"`
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
// @Summary Вход администратора
// @Description Сверяет мастер-пароль и выдаёт токены учётной записи администратора.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Мастер-пароль"
// @Success 200 {object} map[string]any "Токены и данные администратора"
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/admin/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.adminlogin"
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

	tokens, user, err := h.service.AdminLogin(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			log.Info("invalid admin password submitted")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Invalid admin password"))
			return
		}
		log.Error("admin login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("admin login failed"))
		return
	}

	log.Info("admin login successful")
	render.JSON(w, r, map[string]any{
		"token":        tokens.Token,
		"refreshToken": tokens.RefreshToken,
		"user": map[string]any{
			"id":    user.UID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
