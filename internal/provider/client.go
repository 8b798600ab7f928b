package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voicecampaign-platform/internal/config"
)

// Client talks to the provider's REST API with a bearer API key.
type Client struct {
	baseURL     string
	apiKey      string
	maxDuration int
	http        *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxDuration: cfg.MaxCallDurationSeconds,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) StartBatchCall(ctx context.Context, req StartBatchRequest) (BatchCall, error) {
	if req.MaxDurationSecs <= 0 {
		req.MaxDurationSecs = c.maxDuration
	}
	var out BatchCall
	err := c.do(ctx, http.MethodPost, "/v1/batch-calls", req, &out)
	return out, err
}

func (c *Client) StopBatchCall(ctx context.Context, batchID string) (BatchCall, error) {
	var out BatchCall
	err := c.do(ctx, http.MethodPost, "/v1/batch-calls/"+batchID+"/stop", nil, &out)
	return out, err
}

func (c *Client) GetBatchCall(ctx context.Context, batchID string) (BatchCall, error) {
	var out BatchCall
	err := c.do(ctx, http.MethodGet, "/v1/batch-calls/"+batchID, nil, &out)
	return out, err
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
