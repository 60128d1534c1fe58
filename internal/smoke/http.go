package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the expenses API.
type Client struct {
	client  *http.Client
	baseURL string
	runID   string
}

// NewClient creates a client with a per-request timeout. Every request
// carries an X-Request-ID prefixed with runID.
func NewClient(baseURL string, timeout time.Duration, runID string) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		runID:   runID,
	}
}

// do sends one request and returns the status and body.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", c.runID+"-"+uuid.NewString()[:8])

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

// expect sends a request, checks the status and decodes the body into out
// when out is not nil.
func (c *Client) expect(ctx context.Context, method, path string, body any, want int, out any) error {
	status, data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status != want {
		return fmt.Errorf("%w: %s %s returned %d, want %d: %s", ErrUnexpectedStatus, method, path, status, want, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.expect(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// Create posts a new expense.
func (c *Client) Create(ctx context.Context, body map[string]any) (Expense, error) {
	var e Expense
	err := c.expect(ctx, http.MethodPost, "/expenses", body, http.StatusCreated, &e)
	return e, err
}

// Get reads one expense.
func (c *Client) Get(ctx context.Context, id int64) (Expense, error) {
	var e Expense
	err := c.expect(ctx, http.MethodGet, expensePath(id), nil, http.StatusOK, &e)
	return e, err
}

// Update sends a partial update.
func (c *Client) Update(ctx context.Context, id int64, body map[string]any) (Expense, error) {
	var e Expense
	err := c.expect(ctx, http.MethodPut, expensePath(id), body, http.StatusOK, &e)
	return e, err
}

// Delete removes one expense.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.expect(ctx, http.MethodDelete, expensePath(id), nil, http.StatusOK, nil)
}

// ExpectNotFound checks that GET /expenses/{id} answers 404.
func (c *Client) ExpectNotFound(ctx context.Context, id int64) error {
	return c.expect(ctx, http.MethodGet, expensePath(id), nil, http.StatusNotFound, nil)
}

// List reads every expense.
func (c *Client) List(ctx context.Context) ([]Expense, error) {
	var list []Expense
	err := c.expect(ctx, http.MethodGet, "/expenses", nil, http.StatusOK, &list)
	return list, err
}

func expensePath(id int64) string {
	return fmt.Sprintf("/expenses/%d", id)
}
