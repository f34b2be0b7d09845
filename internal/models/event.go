// Package models содержит доменные структуры сервиса провижининга профилей:
// событие создания пользователя из системы идентификации, документ профиля
// и запись журнала попыток провижининга.
package models

// UserIdentityEvent представляет событие о создании нового пользователя,
// полученное от системы идентификации. Поле ID обязательно и является
// стабильным уникальным идентификатором пользователя.
type UserIdentityEvent struct {
	ID    string `json:"id" validate:"required"` // Уникальный идентификатор пользователя
	Email string `json:"email"`                  // Электронная почта
	Name  string `json:"name"`                   // Отображаемое имя пользователя
}
