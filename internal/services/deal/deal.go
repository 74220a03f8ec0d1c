// Package deal содержит бизнес-логику работы со сделками: выдачу URL для
// прямой загрузки файла, извлечение полей из документа внешним сервисом
// распознавания и чтение сделок владельцем.
package deal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/dealshield/internal/gemini"
	"github.com/magabrotheeeer/dealshield/internal/lib/money"
	"github.com/magabrotheeeer/dealshield/internal/lib/sl"
	"github.com/magabrotheeeer/dealshield/internal/models"
)

// Ошибки уровня сделки.
var (
	// ErrExtractionFailed — внешний сервис не вернул корректный JSON.
	// Не ретраится автоматически: пользователь загружает документ заново.
	ErrExtractionFailed = errors.New("document extraction failed")
	// ErrNotOwner — сделка принадлежит другому пользователю.
	ErrNotOwner = errors.New("deal belongs to another user")
)

// Сроки жизни подписанных URL хранилища, секунды.
const (
	uploadURLExpiry = 3600
	readURLExpiry   = 600
)

const extractionPrompt = `You are an expert OCR for car dealership documents.
Analyze this Buyer's Order / Deal Sheet.
Extract the following fields accurately.
Return ONLY valid JSON.
Structure:
{
    "vehicle": "Year Make Model Trim",
    "price": number (Selling Price/MSRP),
    "fees": { "doc_fee": number, "prep_fee": number, "gps": number, "other_add_ons": number },
    "vin": "string",
    "mileage": number,
    "otd_price": number (Out the Door Price / Total Cash Price)
}
If a field is missing, use null or 0.`

// Repository описывает контракт хранилища сделок.
type Repository interface {
	CreateDeal(ctx context.Context, deal models.Deal) error
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	ListDealsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Deal, error)
}

// FileStore описывает контракт внешнего файлового хранилища.
type FileStore interface {
	CreateSignedUploadURL(ctx context.Context, key string, expiresIn int) (string, error)
	CreateSignedURL(ctx context.Context, key string, expiresIn int) (string, error)
	Download(ctx context.Context, signedURL string) ([]byte, string, error)
}

// Extractor описывает вызов сервиса распознавания документа.
type Extractor interface {
	GenerateFromDocument(ctx context.Context, prompt, mimeType, base64Data string) (string, error)
}

// PresignResult — подписанный URL загрузки и ключ файла в хранилище.
type PresignResult struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
}

// ParseResult — результат разбора документа для клиента.
type ParseResult struct {
	DealID   string           `json:"dealId"`
	Preview  *models.Preview  `json:"preview"`
	RiskHint *models.RiskHint `json:"riskHint"`
}

// DealService реализует операции над сделками.
type DealService struct {
	repo      Repository
	files     FileStore
	extractor Extractor
	log       *slog.Logger
}

// NewDealService создает новый экземпляр DealService.
func NewDealService(repo Repository, files FileStore, extractor Extractor, log *slog.Logger) *DealService {
	return &DealService{
		repo:      repo,
		files:     files,
		extractor: extractor,
		log:       log,
	}
}

// PresignUpload выдаёт подписанный URL для прямой загрузки файла в
// хранилище. Ключ файла неймспейсится идентификатором пользователя.
func (s *DealService) PresignUpload(ctx context.Context, userUID string) (*PresignResult, error) {
	const op = "deal.PresignUpload"

	fileKey := fmt.Sprintf("uploads/%s/%s.pdf", userUID, uuid.NewString())
	uploadURL, err := s.files.CreateSignedUploadURL(ctx, fileKey, uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &PresignResult{UploadURL: uploadURL, FileURL: fileKey}, nil
}

// ConfirmUpload подтверждает загрузку. Существование и содержимое файла
// не проверяются: консистентность делегирована внешнему хранилищу.
func (s *DealService) ConfirmUpload(_ context.Context, fileKey string) string {
	return fileKey
}

// Parse скачивает загруженный документ, извлекает из него поля через
// внешний сервис распознавания и сохраняет новую сделку со статусом parsed.
func (s *DealService) Parse(ctx context.Context, userUID, fileKey, zip string) (*ParseResult, error) {
	const op = "deal.Parse"

	signedURL, err := s.files.CreateSignedURL(ctx, fileKey, readURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	data, mimeType, err := s.files.Download(ctx, signedURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	text, err := s.extractor.GenerateFromDocument(ctx, extractionPrompt, mimeType,
		base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var extracted models.ExtractedFields
	if err := json.Unmarshal([]byte(gemini.StripCodeFences(text)), &extracted); err != nil {
		s.log.Error("extraction returned invalid JSON", sl.Err(err))
		return nil, ErrExtractionFailed
	}

	preview := buildPreview(&extracted)
	deal := models.Deal{
		ID:              uuid.NewString(),
		UserUID:         userUID,
		FileKey:         fileKey,
		ZipCode:         zip,
		ExtractedFields: &extracted,
		Preview:         preview,
		Status:          models.DealStatusParsed,
	}
	if err := s.repo.CreateDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("deal parsed", slog.String("deal_id", deal.ID), slog.String("vehicle", extracted.Vehicle))

	// Тизер статичен: счётчик не выводится из результатов извлечения.
	return &ParseResult{
		DealID:  deal.ID,
		Preview: preview,
		RiskHint: &models.RiskHint{
			Count:   3,
			Message: "We found multiple potential issues. Unlock the $19.99 full report to see exactly what to negotiate.",
		},
	}, nil
}

// Read возвращает сделку, проверяя владение.
func (s *DealService) Read(ctx context.Context, userUID, dealID string) (*models.Deal, error) {
	const op = "deal.Read"

	deal, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if deal.UserUID != userUID {
		return nil, ErrNotOwner
	}
	return deal, nil
}

// List возвращает сделки пользователя для страницы истории.
func (s *DealService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Deal, error) {
	const op = "deal.List"

	deals, err := s.repo.ListDealsByUser(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return deals, nil
}

func buildPreview(extracted *models.ExtractedFields) *models.Preview {
	preview := &models.Preview{
		VehicleName: extracted.Vehicle,
		Price:       "N/A",
		Mileage:     "N/A",
	}
	if preview.VehicleName == "" {
		preview.VehicleName = "Unknown Vehicle"
	}
	if extracted.OTDPrice > 0 {
		preview.Price = money.FormatUSD(extracted.OTDPrice)
	} else if extracted.Price > 0 {
		preview.Price = money.FormatUSD(extracted.Price)
	}
	if extracted.Mileage > 0 {
		preview.Mileage = money.GroupDigits(extracted.Mileage)
	}
	return preview
}
