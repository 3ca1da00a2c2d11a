package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"timepunch/internal/core/model"
)

const defaultTimeout = 15 * time.Second

// Client talks to the remote time-record store over HTTP.
// Open and Close are the only two calls the timer engine makes.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a record store client for the given base URL.
// The token, if non-empty, is sent as a bearer credential.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type openRequest struct {
	TaskID string `json:"task_id"`
}

type openResponse struct {
	RecordID string `json:"record_id"`
	Status   int    `json:"status"`
}

type closeRequest struct {
	AdjustmentSeconds int64  `json:"adjustment_seconds"`
	Description       string `json:"description,omitempty"`
	SaveImmediately   bool   `json:"save_immediately"`
	IdempotencyKey    string `json:"idempotency_key"`
}

// Open asks the store to open a timer record for the task.
// The caller decides whether the returned status is acceptable.
func (client *Client) Open(ctx context.Context, taskID string) (model.OpenResult, error) {
	var response openResponse
	err := client.postJSON(ctx, "/api/records", openRequest{TaskID: taskID}, &response)
	if err != nil {
		return model.OpenResult{}, err
	}
	return model.OpenResult{RecordID: response.RecordID, Status: response.Status}, nil
}

// Close finalizes a timer record with its billable duration. The
// billable seconds travel as the adjustment the store subtracts from
// its own elapsed count. The idempotency key makes retried closes safe.
func (client *Client) Close(ctx context.Context, req model.CloseRequest) error {
	path := fmt.Sprintf("/api/records/%s/close", url.PathEscape(req.RecordID))
	body := closeRequest{
		AdjustmentSeconds: req.BillableSeconds,
		Description:       req.Description,
		SaveImmediately:   req.SaveImmediately,
		IdempotencyKey:    req.IdempotencyKey,
	}
	return client.postJSON(ctx, path, body, nil)
}

func (client *Client) postJSON(ctx context.Context, path string, payload, result any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if client.token != "" {
		request.Header.Set("Authorization", "Bearer "+client.token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("call time record store: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("time record store returned status %d: %s", response.StatusCode, response.Status)
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return fmt.Errorf("decode store response: %w", err)
	}
	return nil
}
