package mollie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/metrics"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

// Client - REST-клиент Mollie API v2.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Payments
}

// NewClient создаёт клиента. baseURL указывается вместе с версией API, например https://api.mollie.com/v2.
func NewClient(baseURL, apiKey string, timeout time.Duration, m *metrics.Payments) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
	}
}

// APIError - тело ошибки Mollie (application/hal+json).
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mollie: %d %s: %s (field %s)", e.Status, e.Title, e.Detail, e.Field)
	}
	return fmt.Sprintf("mollie: %d %s: %s", e.Status, e.Title, e.Detail)
}

// do выполняет запрос и декодирует ответ в out. Любая ошибка оборачивается в
// apperror с кодом UPSTREAM_PAYMENT_ERROR, включая 404: неизвестный провайдеру
// платёж - это отказ провайдера, а не отсутствие нашего ресурса.
func (c *Client) do(ctx context.Context, operation, method, path string, payload, out any) (err error) {
	defer func() { c.metrics.ProviderRequest(operation, err) }()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return apperror.Upstream(err, "не удалось сформировать запрос к платёжному провайдеру")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperror.Upstream(err, "не удалось сформировать запрос к платёжному провайдеру")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Upstream(err, "платёжный провайдер недоступен")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}

		logger.Log.WithFields(map[string]interface{}{
			"operation": operation,
			"status":    apiErr.Status,
			"detail":    apiErr.Detail,
		}).Warn("mollie: запрос отклонён")

		return apperror.Upstream(apiErr, fmt.Sprintf("платёжный провайдер отклонил запрос: %s", apiErr.Detail))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Upstream(err, "некорректный ответ платёжного провайдера")
	}
	return nil
}
