package stripeapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance допустимый возраст подписи webhook-события.
const DefaultTolerance = 5 * time.Minute

// Ошибки проверки подписи webhook. Обработчик обязан отвечать 400
// на любую из них, не читая полезную нагрузку.
var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrExpiredSignature = errors.New("webhook signature timestamp outside tolerance")
)

// ConstructEvent проверяет заголовок Stripe-Signature (формат t=...,v1=...)
// против секрета и возвращает разобранное событие. Подпись — HMAC-SHA256
// от строки "{t}.{payload}", сравнение без утечки по времени.
func ConstructEvent(payload []byte, sigHeader, secret string, tolerance time.Duration) (*Event, error) {
	const op = "stripeapi.ConstructEvent"

	timestamp, signatures, err := parseSigHeader(sigHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if time.Since(time.Unix(timestamp, 0)) > tolerance {
		return nil, fmt.Errorf("%s: %w", op, ErrExpiredSignature)
	}

	expected := ComputeSignature(payload, secret, timestamp)
	valid := false
	for _, sig := range signatures {
		sigBytes, decodeErr := hex.DecodeString(sig)
		if decodeErr != nil {
			continue
		}
		if hmac.Equal(expected, sigBytes) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &event, nil
}

// ComputeSignature возвращает HMAC-SHA256 подпись полезной нагрузки
// для заданной метки времени. Используется и при проверке, и в тестах.
func ComputeSignature(payload []byte, secret string, timestamp int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignatureHeader собирает корректный заголовок Stripe-Signature. Для тестов.
func SignatureHeader(payload []byte, secret string, timestamp int64) string {
	sig := ComputeSignature(payload, secret, timestamp)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(sig))
}

func parseSigHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrInvalidSignature
	}

	var timestamp int64 = -1
	var signatures []string
	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch strings.TrimSpace(parts[0]) {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}
	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}
