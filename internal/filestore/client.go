// Package filestore реализует клиент внешнего файлового хранилища
// (Supabase Storage, REST API). Приложение не пропускает байты файлов
// через себя при загрузке: клиенту выдаётся подписанный URL, по которому
// он кладёт файл напрямую в хранилище.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/magabrotheeeer/dealshield/internal/config"
)

// Client клиент файлового хранилища.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент хранилища по настройкам из конфига.
func NewClient(cfg config.FileStorage) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateSignedUploadURL запрашивает у хранилища подписанный URL для прямой
// загрузки файла по ключу key, действительный expiresIn секунд.
// Возвращает абсолютный URL.
func (c *Client) CreateSignedUploadURL(ctx context.Context, key string, expiresIn int) (string, error) {
	const op = "filestore.CreateSignedUploadURL"

	path := fmt.Sprintf("/object/upload/sign/%s/%s", c.bucket, key)
	req, err := c.newRequest(ctx, http.MethodPost, path, map[string]int{"expiresIn": expiresIn})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return c.baseURL + result.URL, nil
}

// CreateSignedURL запрашивает подписанный URL на чтение файла,
// действительный expiresIn секунд.
func (c *Client) CreateSignedURL(ctx context.Context, key string, expiresIn int) (string, error) {
	const op = "filestore.CreateSignedURL"

	path := fmt.Sprintf("/object/sign/%s/%s", c.bucket, key)
	req, err := c.newRequest(ctx, http.MethodPost, path, map[string]int{"expiresIn": expiresIn})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var result struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return c.baseURL + result.SignedURL, nil
}

// Download скачивает файл по подписанному URL и возвращает его байты
// вместе с Content-Type.
func (c *Client) Download(ctx context.Context, signedURL string) ([]byte, string, error) {
	const op = "filestore.Download"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	return data, mimeType, nil
}
