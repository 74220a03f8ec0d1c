// Package gemini реализует клиент сервиса генеративного анализа документов
// (Google Gemini, REST API generateContent). Используется для извлечения
// полей из deal sheet и для генерации отчёта по сделке.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/dealshield/internal/metrics"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client клиент Gemini API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Gemini с таймаутом на внешний вызов.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL создаёт клиент с нестандартным адресом API. Для тестов.
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = baseURL
	return c
}

// GenerateText отправляет текстовый промпт и возвращает текст первого кандидата.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	return c.generate(ctx, "analyze", req)
}

// GenerateFromDocument отправляет промпт вместе с содержимым документа
// (base64, inline_data) и возвращает текст первого кандидата.
func (c *Client) GenerateFromDocument(ctx context.Context, prompt, mimeType, base64Data string) (string, error) {
	req := generateContentRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64Data}},
		}}},
	}
	return c.generate(ctx, "extract", req)
}

func (c *Client) generate(ctx context.Context, kind string, reqBody generateContentRequest) (string, error) {
	const op = "gemini.generate"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(kind, "error").Inc()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		metrics.AIRequestsTotal.WithLabelValues(kind, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, string(body))
	}

	var apiResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		metrics.AIRequestsTotal.WithLabelValues(kind, "error").Inc()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	metrics.AIRequestsTotal.WithLabelValues(kind, "ok").Inc()

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: empty response", op)
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

// StripCodeFences убирает обрамление ```json ... ``` вокруг ответа модели,
// оставляя чистый JSON для декодирования.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
