// Package analysis содержит генерацию отчёта по сделке: проверку оплаты,
// cache-first чтение готового отчёта и вызов внешнего сервиса анализа
// с запасным отчётом при сбое.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/dealshield/internal/gemini"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	"github.com/magabrotheeeer/dealshield/internal/models"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
)

const (
	cacheKeyPrefix = "report:"
	cacheTTL       = time.Hour
)

const analysisPromptFormat = `You are an expert car buyer advocate. Analyze this deal data: %s.
Identify hidden fees/red flags.
Return ONLY valid JSON in this structure:
{
  "score": number (0-100, lower is better deal),
  "red_flags": [ {"title": string, "severity":"high"|"medium"|"low", "explanation": string, "estimated_savings": number, "negotiation_line": string} ],
  "target_otd_range": { "min": number, "max": number },
  "scripts": { "email": string, "in_person": string },
  "summary": "Short 2 sentence summary calling out the biggest rip-off."
}
No markdown, just raw JSON.`

// Repository описывает контракт хранилища для анализа.
type Repository interface {
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	GetReportByDealID(ctx context.Context, dealID string) (*models.Report, error)
	UpsertReport(ctx context.Context, report models.Report) error
	SetDealStatus(ctx context.Context, dealID, status string) error
}

// Cache описывает методы для кэширования отчётов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Analyzer описывает вызов внешнего сервиса генерации отчёта.
type Analyzer interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Result — итог запроса анализа. RequiresPayment выставляется для
// неоплаченной сделки без прав администратора: это не ошибка, клиент
// перенаправляет на пейвол.
type Result struct {
	RequiresPayment bool
	Report          *models.Report
}

// AnalysisService реализует генерацию и выдачу отчётов.
type AnalysisService struct {
	repo     Repository
	cache    Cache
	analyzer Analyzer
	log      *slog.Logger
}

// NewAnalysisService создает новый экземпляр AnalysisService.
func NewAnalysisService(repo Repository, cache Cache, analyzer Analyzer, log *slog.Logger) *AnalysisService {
	return &AnalysisService{
		repo:     repo,
		cache:    cache,
		analyzer: analyzer,
		log:      log,
	}
}

// Analyze возвращает отчёт по сделке.
//
// Неоплаченная сделка без роли admin получает RequiresPayment без единого
// обращения к внешнему сервису. Готовый отчёт отдаётся из кэша или базы
// как есть — внешний сервис вызывается не более одного раза на сделку.
// Запасной (degraded) отчёт не кэшируется и перегенерируется при
// следующем запросе.
func (s *AnalysisService) Analyze(ctx context.Context, userUID, role, dealID string) (*Result, error) {
	const op = "analysis.Analyze"

	deal, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !deal.Paid && role != models.RoleAdmin {
		return &Result{RequiresPayment: true}, nil
	}

	cacheKey := cacheKeyPrefix + dealID
	var cached models.Report
	if found, err := s.cache.Get(cacheKey, &cached); err == nil && found {
		return &Result{Report: &cached}, nil
	} else if err != nil {
		s.log.Warn("report cache read failed", slog.String("key", cacheKey), sl.Err(err))
	}

	stored, err := s.repo.GetReportByDealID(ctx, dealID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if stored != nil && !stored.Degraded {
		if err := s.cache.Set(cacheKey, stored, cacheTTL); err != nil {
			s.log.Warn("failed to cache report", slog.String("key", cacheKey), sl.Err(err))
		}
		return &Result{Report: stored}, nil
	}

	report, degraded := s.generate(ctx, deal)
	if degraded && stored != nil {
		// Повторная генерация тоже не удалась: отдаём прежний запасной
		// отчёт, не перезаписывая его время создания.
		return &Result{Report: stored}, nil
	}

	report.DealID = dealID
	if err := s.repo.UpsertReport(ctx, *report); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetDealStatus(ctx, dealID, models.DealStatusAnalyzed); err != nil {
		s.log.Warn("failed to update deal status", slog.String("deal_id", dealID), sl.Err(err))
	}

	if !report.Degraded {
		if err := s.cache.Set(cacheKey, report, cacheTTL); err != nil {
			s.log.Warn("failed to cache report", slog.String("key", cacheKey), sl.Err(err))
		}
	}

	s.log.Info("report generated",
		slog.String("deal_id", dealID),
		slog.Int("score", report.Score),
		slog.Bool("degraded", report.Degraded))
	return &Result{Report: report}, nil
}

// generate вызывает внешний сервис и разбирает его ответ. При любом сбое
// возвращает фиксированный запасной отчёт: оплаченный продукт не должен
// показывать экран ошибки.
func (s *AnalysisService) generate(ctx context.Context, deal *models.Deal) (*models.Report, bool) {
	dealContext, err := json.Marshal(map[string]any{
		"extracted": deal.ExtractedFields,
		"zip":       deal.ZipCode,
	})
	if err != nil {
		s.log.Error("failed to marshal deal context", sl.Err(err))
		return fallbackReport(), true
	}

	text, err := s.analyzer.GenerateText(ctx, fmt.Sprintf(analysisPromptFormat, dealContext))
	if err != nil {
		s.log.Error("analysis call failed", sl.Err(err))
		return fallbackReport(), true
	}

	var report models.Report
	if err := json.Unmarshal([]byte(gemini.StripCodeFences(text)), &report); err != nil {
		s.log.Error("analysis returned invalid JSON", sl.Err(err))
		return fallbackReport(), true
	}

	report.Category = models.CategoryForScore(report.Score)
	return &report, false
}

func fallbackReport() *models.Report {
	score := 50
	return &models.Report{
		Score:    score,
		Category: models.CategoryForScore(score),
		RedFlags: []models.RedFlag{{
			Title:       "AI Analysis Failed",
			Severity:    "medium",
			Explanation: "Could not generate report.",
		}},
		TargetOTDRange: models.TargetOTDRange{Min: 25000, Max: 26000},
		Scripts:        models.Scripts{},
		Summary:        "Manual review required.",
		Degraded:       true,
	}
}
