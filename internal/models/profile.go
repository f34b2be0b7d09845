package models

import "time"

// Статусы подписки, которые может принимать профиль.
const (
	SubscriptionStatusTrial   = "trial"
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
	SubscriptionStatusFree    = "free"
)

// ProfileDocument описывает документ профиля пользователя, создаваемый
// в документном хранилище. UserID ссылается на идентификатор пользователя
// из системы идентификации, остальные поля заполняются дефолтами
// пробного периода.
type ProfileDocument struct {
	UserID              string    // Идентификатор пользователя из системы идентификации
	Email               string    // Электронная почта
	Name                string    // Отображаемое имя пользователя
	SubscriptionStatus  string    // Статус подписки, при создании всегда "trial"
	SubscriptionEndDate time.Time // Дата окончания пробного периода
	Plan                string    // Тарифный план, при создании всегда "free"
	Credits             int       // Начальное количество кредитов
}

// Data возвращает поля документа в виде карты для передачи в документное
// хранилище. Дата окончания сериализуется в RFC3339 в UTC.
func (d ProfileDocument) Data() map[string]any {
	return map[string]any{
		"userId":              d.UserID,
		"email":               d.Email,
		"name":                d.Name,
		"subscriptionStatus":  d.SubscriptionStatus,
		"subscriptionEndDate": d.SubscriptionEndDate.UTC().Format(time.RFC3339),
		"plan":                d.Plan,
		"credits":             d.Credits,
	}
}

// ProvisionAttempt представляет запись журнала о попытке создания профиля.
type ProvisionAttempt struct {
	ID           int       // Идентификатор записи в журнале
	UserUID      string    // Идентификатор пользователя из события
	Email        string    // Электронная почта из события
	DocumentID   string    // Идентификатор созданного документа, пусто при ошибке
	Status       string    // Итог попытки: "created" или "failed"
	ErrorMessage string    // Текст ошибки хранилища при неуспехе
	CreatedAt    time.Time // Время записи
}

// Статусы записей журнала попыток.
const (
	AttemptStatusCreated = "created"
	AttemptStatusFailed  = "failed"
)
