package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/profile-provisioner/internal/models"
)

// CreateAttempt вставляет запись о попытке провижининга и возвращает её ID.
func (s *Storage) CreateAttempt(ctx context.Context, attempt models.ProvisionAttempt) (int, error) {
	const op = "storage.CreateAttempt"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO provision_attempts (user_uid, email, document_id, status, error_message)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		attempt.UserUID, attempt.Email, attempt.DocumentID, attempt.Status,
		attempt.ErrorMessage).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListAttemptsByUser возвращает записи журнала для пользователя,
// отсортированные от новых к старым.
func (s *Storage) ListAttemptsByUser(ctx context.Context, userUID string) ([]*models.ProvisionAttempt, error) {
	const op = "storage.ListAttemptsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, document_id, status, error_message, created_at
			  FROM provision_attempts
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var attempts []*models.ProvisionAttempt
	for rows.Next() {
		a := &models.ProvisionAttempt{}
		if err := rows.Scan(&a.ID, &a.UserUID, &a.Email, &a.DocumentID,
			&a.Status, &a.ErrorMessage, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return attempts, nil
}
