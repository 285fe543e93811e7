package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/model"
)

// Client drives one server's session API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// nextBody is the body of GET /session/next.
type nextBody struct {
	Complete  bool                `json:"complete"`
	Selection *adaptive.Selection `json:"selection"`
	Progress  service.Progress    `json:"progress"`
}

type respondBody struct {
	TicketID string         `json:"ticket_id"`
	Response model.Response `json:"response"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Health checks that the server answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnhealthy, c.baseURL, err)
	}
	return nil
}

// Start starts a fresh session.
func (c *Client) Start(ctx context.Context) (service.Progress, error) {
	var p service.Progress
	err := c.do(ctx, http.MethodPost, "/session", nil, http.StatusCreated, &p)
	return p, err
}

// Next fetches the next item; the selection is nil once the session is complete.
func (c *Client) Next(ctx context.Context) (*adaptive.Selection, service.Progress, error) {
	var body nextBody
	if err := c.do(ctx, http.MethodGet, "/session/next", nil, http.StatusOK, &body); err != nil {
		return nil, service.Progress{}, err
	}
	if body.Complete {
		return nil, body.Progress, nil
	}
	return body.Selection, body.Progress, nil
}

// Respond submits response for ticketID.
func (c *Client) Respond(ctx context.Context, ticketID string, response model.Response) (service.Outcome, error) {
	var out service.Outcome
	err := c.do(ctx, http.MethodPost, "/session/responses", respondBody{TicketID: ticketID, Response: response}, http.StatusOK, &out)
	return out, err
}

// Report fetches the result of the session.
func (c *Client) Report(ctx context.Context) (service.Result, error) {
	var res service.Result
	err := c.do(ctx, http.MethodGet, "/session/report", nil, http.StatusOK, &res)
	return res, err
}

// do sends one request and decodes a response with status want into out.
func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != want {
		var e errorBody
		if json.Unmarshal(data, &e) == nil && e.Code != "" {
			return fmt.Errorf("%w: %s %s: %d %s: %s", ErrStatus, method, path, resp.StatusCode, e.Code, e.Message)
		}
		return fmt.Errorf("%w: %s %s: %d", ErrStatus, method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
