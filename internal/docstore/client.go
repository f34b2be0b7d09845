// Package docstore реализует клиент документного хранилища, в котором
// создаются профили пользователей. Создание документа и прикрепление прав
// доступа выполняются одним атомарным запросом.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/magabrotheeeer/profile-provisioner/internal/config"
)

// StoreError описывает отказ документного хранилища. Message содержит текст
// ошибки хранилища без изменений.
type StoreError struct {
	StatusCode int
	Message    string
}

func (e *StoreError) Error() string {
	return e.Message
}

// Client клиент HTTP API документного хранилища.
type Client struct {
	endpoint   string
	projectID  string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент документного хранилища.
func NewClient(cfg config.DocumentStore) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		projectID:  cfg.ProjectID,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type createDocumentRequest struct {
	DocumentID  string         `json:"documentId"`
	Data        map[string]any `json:"data"`
	Permissions []string       `json:"permissions"`
}

type createDocumentResponse struct {
	ID string `json:"$id"`
}

type storeErrorResponse struct {
	Message string `json:"message"`
}

// CreateDocument создает новый документ с заданными полями и правами доступа
// и возвращает присвоенный хранилищем идентификатор. Попытка выполняется
// ровно один раз, повторов нет.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string,
	data map[string]any, permissions []string) (string, error) {
	url := fmt.Sprintf("%s/databases/%s/collections/%s/documents", c.endpoint, databaseID, collectionID)

	body, err := json.Marshal(createDocumentRequest{
		DocumentID:  documentID,
		Data:        data,
		Permissions: permissions,
	})
	if err != nil {
		return "", &StoreError{Message: fmt.Sprintf("failed to marshal document: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &StoreError{Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &StoreError{Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.handleErrorResponse(resp)
	}

	var created createDocumentResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &StoreError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}
	return created.ID, nil
}

// handleErrorResponse извлекает текст ошибки из ответа хранилища. Если тело
// не является ожидаемым JSON, текст возвращается как есть.
func (c *Client) handleErrorResponse(resp *http.Response) *StoreError {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StoreError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("store error with status %d", resp.StatusCode)}
	}

	var storeErr storeErrorResponse
	if err := json.Unmarshal(bodyBytes, &storeErr); err == nil && storeErr.Message != "" {
		return &StoreError{StatusCode: resp.StatusCode, Message: storeErr.Message}
	}
	return &StoreError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
}
