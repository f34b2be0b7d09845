// Package provision содержит бизнес-логику провижининга профилей: расчёт
// дефолтного документа профиля, построение прав доступа и единственный вызов
// создания документа в хранилище.
package provision

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/profile-provisioner/internal/config"
	"github.com/magabrotheeeer/profile-provisioner/internal/docstore"
	"github.com/magabrotheeeer/profile-provisioner/internal/lib/sl"
	"github.com/magabrotheeeer/profile-provisioner/internal/models"
)

// DocumentStore описывает контракт документного хранилища.
type DocumentStore interface {
	// CreateDocument создает документ с правами доступа и возвращает его ID.
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string,
		data map[string]any, permissions []string) (string, error)
}

// AuditRepository описывает контракт журнала попыток провижининга.
type AuditRepository interface {
	// CreateAttempt сохраняет запись о попытке и возвращает её ID.
	CreateAttempt(ctx context.Context, attempt models.ProvisionAttempt) (int, error)
}

// Service реализует конвейер провижининга профиля.
type Service struct {
	store    DocumentStore
	audit    AuditRepository
	storeCfg config.DocumentStore
	defaults config.ProfileDefaults
	log      *slog.Logger
	now      func() time.Time
}

// New создает новый Service.
func New(store DocumentStore, audit AuditRepository, storeCfg config.DocumentStore,
	defaults config.ProfileDefaults, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		audit:    audit,
		storeCfg: storeCfg,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

// Compose вычисляет дефолтный документ профиля для события создания
// пользователя. Функция чистая: результат полностью определяется аргументами.
func Compose(identity models.UserIdentityEvent, now time.Time, defaults config.ProfileDefaults) models.ProfileDocument {
	return models.ProfileDocument{
		UserID:              identity.ID,
		Email:               identity.Email,
		Name:                identity.Name,
		SubscriptionStatus:  defaults.InitialStatus,
		SubscriptionEndDate: now.UTC().AddDate(0, 0, defaults.TrialDurationDays),
		Plan:                defaults.InitialPlan,
		Credits:             defaults.InitialCredits,
	}
}

// BuildPolicy строит набор прав доступа нового документа: ровно чтение,
// обновление и удаление для владельца. Других грантов нет.
func BuildPolicy(userID string) []string {
	role := docstore.RoleUser(userID)
	return []string{
		docstore.PermissionRead(role),
		docstore.PermissionUpdate(role),
		docstore.PermissionDelete(role),
	}
}

// Provision выполняет провижининг профиля для события: проверяет полноту
// настроек хранилища, собирает документ и права и делает один запрос на
// создание. Возвращает идентификатор созданного документа.
func (s *Service) Provision(ctx context.Context, identity models.UserIdentityEvent) (string, error) {
	if err := s.storeCfg.Validate(); err != nil {
		return "", err
	}

	doc := Compose(identity, s.now(), s.defaults)
	permissions := BuildPolicy(identity.ID)

	documentID, err := s.store.CreateDocument(ctx, s.storeCfg.DatabaseID, s.storeCfg.CollectionID,
		uuid.NewString(), doc.Data(), permissions)
	if err != nil {
		s.recordAttempt(ctx, models.ProvisionAttempt{
			UserUID:      identity.ID,
			Email:        identity.Email,
			Status:       models.AttemptStatusFailed,
			ErrorMessage: err.Error(),
		})
		return "", err
	}

	s.log.Info("created profile document",
		slog.String("user_uid", identity.ID),
		slog.String("document_id", documentID))

	s.recordAttempt(ctx, models.ProvisionAttempt{
		UserUID:    identity.ID,
		Email:      identity.Email,
		DocumentID: documentID,
		Status:     models.AttemptStatusCreated,
	})
	return documentID, nil
}

// recordAttempt пишет запись в журнал попыток. Ошибка журнала не влияет на
// итог провижининга.
func (s *Service) recordAttempt(ctx context.Context, attempt models.ProvisionAttempt) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.CreateAttempt(ctx, attempt); err != nil {
		s.log.Warn("failed to record provision attempt",
			slog.String("user_uid", attempt.UserUID), sl.Err(err))
	}
}
