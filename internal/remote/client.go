// Package remote implements the HTTP client for the remote document
// store and the session keeping the active remote identity.
//
// Хранилище рассматривается как непрозрачный document API: одна запись
// на essayId, запись поверх существующей (merge) с идемпотентной
// семантикой at-least-once.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/essaykeeper/essaykeeper/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс клиента удалённого хранилища документов
type ClientAPI interface {
	// SaveDocument writes the draft document, merging over an existing one
	SaveDocument(ctx context.Context, accessToken string, doc api.DraftDocument) error

	// SaveChunk uploads one content chunk of an oversized document
	SaveChunk(ctx context.Context, accessToken string, chunk api.DraftChunk) error
}

// Client представляет HTTP клиент для взаимодействия с удалённым хранилищем
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый клиент хранилища документов
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SaveDocument writes the draft document, merging over an existing one
func (c *Client) SaveDocument(ctx context.Context, accessToken string, doc api.DraftDocument) error {
	path := fmt.Sprintf("/api/v1/drafts/%s", doc.EssayID)
	if err := c.doRequest(ctx, http.MethodPut, path, accessToken, doc); err != nil {
		return fmt.Errorf("save document request failed: %w", err)
	}
	return nil
}

// SaveChunk uploads one content chunk of an oversized document
func (c *Client) SaveChunk(ctx context.Context, accessToken string, chunk api.DraftChunk) error {
	path := fmt.Sprintf("/api/v1/drafts/%s/chunks/%d", chunk.EssayID, chunk.Index)
	if err := c.doRequest(ctx, http.MethodPut, path, accessToken, chunk); err != nil {
		return fmt.Errorf("save chunk request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос и переводит неуспех в типизированную ошибку
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Дедлайн попытки пробрасываем как есть: вызывающий различает
		// его отдельно от сетевых ошибок
		if errors.Is(err, context.DeadlineExceeded) {
			return &Error{Code: CodeDeadlineExceeded, Message: "request deadline exceeded", Err: err}
		}
		return &Error{Code: CodeUnavailable, Message: "request failed", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: CodeUnavailable, Message: "failed to read response body", Err: err}
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := string(respBody)
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			message = errResp.Message
		}
		return &Error{
			Code:    codeForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: message,
		}
	}

	return nil
}
