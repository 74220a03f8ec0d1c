package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/dealshield/internal/models"
)

// UpsertVerificationCode сохраняет код подтверждения для email,
// заменяя предыдущий: на один email активен не более одного кода.
func (s *Storage) UpsertVerificationCode(ctx context.Context, code models.VerificationCode) error {
	const op = "storage.UpsertVerificationCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO verification_codes (email, code, created_at, expires_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (email) DO UPDATE
			  SET code = EXCLUDED.code,
			      created_at = EXCLUDED.created_at,
			      expires_at = EXCLUDED.expires_at`
	_, err := s.DB.ExecContext(ctx, query, code.Email, code.Code, code.CreatedAt, code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetVerificationCode возвращает сохранённый код для email или ErrNotFound.
func (s *Storage) GetVerificationCode(ctx context.Context, email string) (*models.VerificationCode, error) {
	const op = "storage.GetVerificationCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT email, code, created_at, expires_at
			  FROM verification_codes
			  WHERE email = $1`
	var result models.VerificationCode
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&result.Email, &result.Code, &result.CreatedAt, &result.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// DeleteVerificationCode удаляет код после успешного подтверждения.
func (s *Storage) DeleteVerificationCode(ctx context.Context, email string) error {
	const op = "storage.DeleteVerificationCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM verification_codes WHERE email = $1`
	_, err := s.DB.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
