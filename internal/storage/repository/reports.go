package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/dealshield/internal/models"
)

// UpsertReport сохраняет отчёт по сделке. Ключ — deal_id, поэтому
// повторная генерация (в том числе гонка двух запросов) сходится
// к одной строке, побеждает последняя запись.
func (s *Storage) UpsertReport(ctx context.Context, report models.Report) error {
	const op = "storage.UpsertReport"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	redFlags, err := json.Marshal(report.RedFlags)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	targetRange, err := json.Marshal(report.TargetOTDRange)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	scripts, err := json.Marshal(report.Scripts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO reports (deal_id, score, category, red_flags,
			      target_otd_range, negotiation_script, summary, degraded)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (deal_id) DO UPDATE
			  SET score = EXCLUDED.score,
			      category = EXCLUDED.category,
			      red_flags = EXCLUDED.red_flags,
			      target_otd_range = EXCLUDED.target_otd_range,
			      negotiation_script = EXCLUDED.negotiation_script,
			      summary = EXCLUDED.summary,
			      degraded = EXCLUDED.degraded`
	_, err = s.DB.ExecContext(ctx, query,
		report.DealID, report.Score, report.Category, redFlags, targetRange,
		scripts, report.Summary, report.Degraded)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetReportByDealID возвращает сохранённый отчёт или ErrNotFound.
func (s *Storage) GetReportByDealID(ctx context.Context, dealID string) (*models.Report, error) {
	const op = "storage.GetReportByDealID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT deal_id, score, category, red_flags, target_otd_range,
			      negotiation_script, summary, degraded, created_at
			  FROM reports WHERE deal_id = $1`
	row := s.DB.QueryRowContext(ctx, query, dealID)

	var result models.Report
	var redFlags, targetRange, scripts []byte
	if err := row.Scan(&result.DealID, &result.Score, &result.Category,
		&redFlags, &targetRange, &scripts, &result.Summary, &result.Degraded,
		&result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(redFlags, &result.RedFlags); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(targetRange, &result.TargetOTDRange); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(scripts, &result.Scripts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
