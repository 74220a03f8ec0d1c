package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/dealshield/internal/models"
)

// CreateDeal вставляет новую сделку с извлечёнными полями и превью.
func (s *Storage) CreateDeal(ctx context.Context, deal models.Deal) error {
	const op = "storage.CreateDeal"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	fields, err := json.Marshal(deal.ExtractedFields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	preview, err := json.Marshal(deal.Preview)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO deals (id, user_uid, file_key, zip_code, extracted_fields,
			      preview, status, paid)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.DB.ExecContext(ctx, query,
		deal.ID, deal.UserUID, deal.FileKey, deal.ZipCode, fields, preview,
		deal.Status, deal.Paid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetDeal возвращает сделку по её ID или ErrNotFound.
func (s *Storage) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	const op = "storage.GetDeal"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, file_key, zip_code, extracted_fields, preview,
			      status, paid, paid_at, amount_cents, stripe_session_id, created_at
			  FROM deals WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Deal
	var fields, preview []byte
	var paidAt sql.NullTime
	var sessionID sql.NullString
	if err := row.Scan(&result.ID, &result.UserUID, &result.FileKey, &result.ZipCode,
		&fields, &preview, &result.Status, &result.Paid, &paidAt,
		&result.AmountCents, &sessionID, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &result.ExtractedFields); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if len(preview) > 0 {
		if err := json.Unmarshal(preview, &result.Preview); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if paidAt.Valid {
		result.PaidAt = &paidAt.Time
	}
	if sessionID.Valid {
		result.StripeSessionID = sessionID.String
	}
	return &result, nil
}

// ListDealsByUser возвращает сделки пользователя, новые первыми.
func (s *Storage) ListDealsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Deal, error) {
	const op = "storage.ListDealsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, file_key, zip_code, preview, status, paid, created_at
			  FROM deals
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Deal
	for rows.Next() {
		var item models.Deal
		var preview []byte
		if err := rows.Scan(&item.ID, &item.UserUID, &item.FileKey, &item.ZipCode,
			&preview, &item.Status, &item.Paid, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(preview) > 0 {
			if err := json.Unmarshal(preview, &item.Preview); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetDealSessionID сохраняет идентификатор checkout-сессии на сделке.
func (s *Storage) SetDealSessionID(ctx context.Context, dealID, sessionID string) error {
	const op = "storage.SetDealSessionID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE deals SET stripe_session_id = $1 WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, sessionID, dealID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkDealPaid выставляет флаг оплаты. Повторное применение того же события
// не меняет состояние: установка булевого флага идемпотентна.
func (s *Storage) MarkDealPaid(ctx context.Context, dealID, sessionID string, amountCents int64) error {
	const op = "storage.MarkDealPaid"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE deals
			  SET paid = TRUE,
			      paid_at = COALESCE(paid_at, NOW()),
			      amount_cents = $1,
			      stripe_session_id = $2
			  WHERE id = $3`
	_, err := s.DB.ExecContext(ctx, query, amountCents, sessionID, dealID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetDealPaid возвращает флаг оплаты сделки без остальных полей.
func (s *Storage) GetDealPaid(ctx context.Context, dealID string) (bool, error) {
	const op = "storage.GetDealPaid"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT paid FROM deals WHERE id = $1`
	var paid bool
	if err := s.DB.QueryRowContext(ctx, query, dealID).Scan(&paid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return paid, nil
}

// SetDealStatus обновляет статус сделки.
func (s *Storage) SetDealStatus(ctx context.Context, dealID, status string) error {
	const op = "storage.SetDealStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE deals SET status = $1 WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, status, dealID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
