package api

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

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/metrics"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/version"
)

const (
	// DefaultBaseURL совпадает с адресом API по умолчанию у веб-клиента.
	DefaultBaseURL = "http://localhost:5000"

	headerRequestID = "X-Request-ID"
)

// Client — HTTP-клиент удалённого сервиса заказов и каталога.
// Повторов и таймаутов по умолчанию нет: каждый отказ возвращается один раз,
// отмена возможна только через context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Entry
	metrics    *metrics.SessionMetrics
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (например, чтобы задать Timeout).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout задаёт таймаут запроса; 0 означает "без таймаута".
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.SessionMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient создаёт клиента для API по адресу baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     log.WithField("component", "store-api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает адрес API без завершающего слэша.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	operation string
	method    string
	path      string
	body      any
	token     string
}

type errorBody struct {
	Message string `json:"message"`
}

// do выполняет запрос и декодирует успешный ответ в out (если out != nil).
// Ответ вне диапазона 2xx превращается в *domain.RemoteError.
func (c *Client) do(ctx context.Context, req request, out any) (err error) {
	started := time.Now()
	requestID := uuid.NewString()
	logger := c.logger.WithFields(log.Fields{
		"operation":  req.operation,
		"method":     req.method,
		"path":       req.path,
		"request_id": requestID,
	})
	defer func() {
		c.metrics.RecordRemoteCall(req.operation, time.Since(started), err)
	}()

	var payload io.Reader
	if req.body != nil {
		data, marshalErr := json.Marshal(req.body)
		if marshalErr != nil {
			return fmt.Errorf("marshal %s payload: %w", req.operation, marshalErr)
		}
		payload = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, payload)
	if err != nil {
		return fmt.Errorf("create %s request: %w", req.operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	httpReq.Header.Set(headerRequestID, requestID)
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.WithError(err).Warn("store api request failed")
		return fmt.Errorf("execute %s request: %w", req.operation, errors.Join(domain.ErrRemote, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", req.operation, errors.Join(domain.ErrRemote, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body errorBody
		_ = json.Unmarshal(respBody, &body)
		remoteErr := domain.NewRemoteError(resp.StatusCode, body.Message)
		logger.WithFields(log.Fields{
			"status":  resp.StatusCode,
			"message": remoteErr.Message,
		}).Info("store api rejected request")
		return remoteErr
	}

	logger.WithFields(log.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("store api request completed")

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", req.operation, errors.Join(domain.ErrRemote, err))
	}
	return nil
}

// Health проверяет доступность API через GET /health.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, request{operation: "health", method: http.MethodGet, path: "/health"}, &resp); err != nil {
		return err
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "ok") && !strings.EqualFold(resp.Status, "healthy") {
		return fmt.Errorf("store api status %q", resp.Status)
	}
	return nil
}
