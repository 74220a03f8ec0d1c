// Package models содержит доменные структуры сделки: загруженный документ,
// извлечённые из него поля и состояние оплаты.
package models

import "time"

// Статусы сделки по мере прохождения конвейера.
const (
	DealStatusUploaded = "uploaded"
	DealStatusParsed   = "parsed"
	DealStatusAnalyzed = "analyzed"
)

// Deal представляет одну загруженную пользователем сделку:
// ссылку на файл, извлечённые поля, превью и флаг оплаты.
//
// Поле Paid выставляется только обработчиком webhook платёжного
// провайдера, клиентские вызовы его не меняют.
type Deal struct {
	ID              string           // Уникальный идентификатор сделки
	UserUID         string           // Владелец сделки
	FileKey         string           // Ключ файла в хранилище
	ZipCode         string           // Почтовый индекс для контекста анализа
	ExtractedFields *ExtractedFields // Поля, извлечённые из документа
	Preview         *Preview         // Превью для страницы до оплаты
	Status          string           // uploaded -> parsed -> analyzed
	Paid            bool             // Оплачен ли полный отчёт
	PaidAt          *time.Time       // Время оплаты
	AmountCents     int64            // Сумма платежа в центах
	StripeSessionID string           // Идентификатор checkout-сессии
	CreatedAt       time.Time        // Время создания
}

// ExtractedFields — структурированные поля, извлечённые из deal sheet
// внешним сервисом распознавания документов.
type ExtractedFields struct {
	Vehicle  string  `json:"vehicle"`
	Price    float64 `json:"price"`
	Fees     Fees    `json:"fees"`
	VIN      string  `json:"vin"`
	Mileage  int64   `json:"mileage"`
	OTDPrice float64 `json:"otd_price"`
}

// Fees — разбивка сборов дилера из документа.
type Fees struct {
	DocFee      float64 `json:"doc_fee"`
	PrepFee     float64 `json:"prep_fee"`
	GPS         float64 `json:"gps"`
	OtherAddOns float64 `json:"other_add_ons"`
}

// Preview — краткая сводка сделки, показываемая до оплаты.
type Preview struct {
	VehicleName string `json:"vehicle_name"`
	Price       string `json:"price"`
	Mileage     string `json:"mileage"`
}

// RiskHint — тизер на странице превью. Счётчик и текст статичны,
// не выводятся из результатов анализа.
type RiskHint struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}
