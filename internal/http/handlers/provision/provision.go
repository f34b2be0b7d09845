// Package provision реализует HTTP-обработчик триггера создания пользователя.
//
// Handler принимает сырой payload события, разбирает и валидирует его,
// запускает провижининг профиля через сервис и возвращает структурированный
// ответ { success, message?, error? }.
//
// Все пути отказа завершаются структурированным ответом: 400 для
// некорректного payload, 500 для ошибок конфигурации и хранилища.
package provision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/profile-provisioner/internal/config"
	"github.com/magabrotheeeer/profile-provisioner/internal/docstore"
	"github.com/magabrotheeeer/profile-provisioner/internal/http/response"
	"github.com/magabrotheeeer/profile-provisioner/internal/lib/sl"
	"github.com/magabrotheeeer/profile-provisioner/internal/models"
)

// Handler управляет HTTP-запросами триггера создания пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	decoder Decoder      // Разбор и валидация payload события
	service Service      // Сервис бизнес-логики провижининга
}

// Decoder описывает интерфейс разбора payload события.
type Decoder interface {
	Decode(raw []byte) (*models.UserIdentityEvent, error)
}

// Service описывает интерфейс бизнес-логики провижининга профиля.
type Service interface {
	Provision(ctx context.Context, identity models.UserIdentityEvent) (string, error)
}

// New создает новый Handler с переданными логгером, декодером и сервисом.
func New(log *slog.Logger, decoder Decoder, service Service) *Handler {
	return &Handler{
		log:     log,
		decoder: decoder,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Провижининг профиля нового пользователя
// @Description Принимает событие о создании пользователя и создает документ профиля с дефолтами пробного периода.
// @Tags Provisioning
// @Accept  json
// @Produce  json
// @Param request body models.UserIdentityEvent true "Событие создания пользователя"
// @Success 200 {object} response.Response "Профиль создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный payload события"
// @Failure 500 {object} response.ErrorResponse "Ошибка конфигурации или хранилища"
// @Router /hooks/users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.provision"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	identity, err := h.decoder.Decode(body)
	if err != nil {
		log.Error("failed to decode trigger payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	log.Info("trigger payload decoded", slog.String("user_uid", identity.ID))

	documentID, err := h.service.Provision(r.Context(), *identity)
	if err != nil {
		if errors.Is(err, config.ErrMissingConfig) {
			log.Error("provisioning is not configured", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		var storeErr *docstore.StoreError
		if errors.As(err, &storeErr) {
			log.Error("document store rejected profile",
				slog.String("user_uid", identity.ID),
				slog.Int("store_status", storeErr.StatusCode),
				sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(storeErr.Message))
			return
		}

		log.Error("failed to provision profile", slog.String("user_uid", identity.ID), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("success to provision profile",
		slog.String("user_uid", identity.ID),
		slog.String("document_id", documentID))
	render.JSON(w, r, response.OK("User profile created"))
}
