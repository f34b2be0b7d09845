// Package event реализует разбор и валидацию триггерного payload о создании
// пользователя. Payload приходит либо как JSON-объект, либо как JSON-строка
// с ещё одним уровнем сериализации внутри — в этом случае снимается ровно
// один дополнительный уровень.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/profile-provisioner/internal/models"
)

// Ошибки разбора payload. Все они матчатся через errors.Is(err, ErrDecode).
var (
	// ErrDecode общий признак ошибки разбора payload.
	ErrDecode = errors.New("invalid trigger payload")
	// ErrEmptyPayload возвращается для пустого payload.
	ErrEmptyPayload = fmt.Errorf("%w: empty body", ErrDecode)
	// ErrMissingID возвращается, если в payload нет идентификатора пользователя.
	ErrMissingID = fmt.Errorf("%w: missing user id", ErrDecode)
)

// Decoder разбирает payload события и валидирует результат.
type Decoder struct {
	validate *validator.Validate
}

// New создает новый Decoder.
func New() *Decoder {
	return &Decoder{validate: validator.New()}
}

// rawEvent принимает оба варианта ключа идентификатора: система
// идентификации присылает "$id", прямые вызовы — "id".
type rawEvent struct {
	ID    string `json:"$id"`
	AltID string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Decode разбирает payload в UserIdentityEvent. Если payload представляет
// собой JSON-строку с вложенным событием, снимается ровно один уровень
// сериализации, после чего значение обязано быть объектом.
func (d *Decoder) Decode(raw []byte) (*models.UserIdentityEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyPayload
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 {
			return nil, ErrEmptyPayload
		}
	}

	var re rawEvent
	if err := json.Unmarshal(trimmed, &re); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	evt := &models.UserIdentityEvent{
		ID:    re.ID,
		Email: re.Email,
		Name:  re.Name,
	}
	if evt.ID == "" {
		evt.ID = re.AltID
	}

	if err := d.validate.Struct(evt); err != nil {
		return nil, ErrMissingID
	}
	return evt, nil
}
