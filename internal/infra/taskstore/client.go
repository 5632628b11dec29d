// Package taskstore is the HTTP client for the remote task store that
// persists plans and tasks. Responses are returned as raw records; the
// normalizer owns canonical shape, not this client.
package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/logging"
	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/observability/tracing"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type plansResponse struct {
	Plans []domain.RawRecord `json:"plans"`
	Count int                `json:"count"`
}

func (c *Client) CreatePlan(ctx context.Context, payload domain.RawRecord) (domain.RawRecord, error) {
	return c.sendRecord(ctx, http.MethodPost, "/api/v1/plans", payload)
}

func (c *Client) UpdatePlan(ctx context.Context, planID string, patch domain.RawRecord) (domain.RawRecord, error) {
	if planID == "" {
		return nil, domain.ErrMissingPlanID
	}
	return c.sendRecord(ctx, http.MethodPatch, "/api/v1/plans/"+url.PathEscape(planID), patch)
}

func (c *Client) AddTask(ctx context.Context, planID string, payload domain.RawRecord) (domain.RawRecord, error) {
	if planID == "" {
		return nil, domain.ErrMissingPlanID
	}
	return c.sendRecord(ctx, http.MethodPost, "/api/v1/plans/"+url.PathEscape(planID)+"/tasks", payload)
}

func (c *Client) UpdateTask(ctx context.Context, planID, taskID string, patch domain.RawRecord) (domain.RawRecord, error) {
	if planID == "" {
		return nil, domain.ErrMissingPlanID
	}
	if taskID == "" {
		return nil, domain.ErrMissingTaskID
	}
	path := "/api/v1/plans/" + url.PathEscape(planID) + "/tasks/" + url.PathEscape(taskID)
	return c.sendRecord(ctx, http.MethodPatch, path, patch)
}

func (c *Client) ListPlans(ctx context.Context, page domain.PageParams) ([]domain.RawRecord, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = "/api/v1/plans"
	q := u.Query()
	if page.Page > 0 {
		q.Set("page", strconv.Itoa(page.Page))
	}
	if page.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(page.PerPage))
	}
	u.RawQuery = q.Encode()

	slog.Debug("fetching plans from task store",
		slog.String("url", u.String()),
	)

	body, err := c.do(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var resp plansResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Error("failed to decode plans response from task store",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	slog.Debug("successfully fetched plans",
		slog.Int("count", len(resp.Plans)),
	)

	return resp.Plans, nil
}

// Ping checks that the task store answers its list endpoint.
func (c *Client) Ping(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = "/api/v1/plans"
	q := u.Query()
	q.Set("perPage", "1")
	u.RawQuery = q.Encode()

	_, err = c.do(ctx, http.MethodGet, u.String(), nil)
	return err
}

func (c *Client) sendRecord(ctx context.Context, method, path string, payload domain.RawRecord) (domain.RawRecord, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = path

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	slog.Debug("sending record to task store",
		slog.String("method", method),
		slog.String("url", u.String()),
	)

	respBody, err := c.do(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var record domain.RawRecord
	if err := json.Unmarshal(respBody, &record); err != nil {
		slog.Error("failed to decode record from task store",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return record, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("failed to send request to task store",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("failed to read response body from task store",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.Error("unexpected status code from task store",
			slog.String("url", rawURL),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return respBody, nil
}
