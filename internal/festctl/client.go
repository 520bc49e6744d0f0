// Package festctl implements the admin command line client for the fest API.
package festctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fest/internal/adapters/http/api"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/internal/domain/types"
)

// Client errors. The messages are shown to operators as-is.
var (
	ErrUnreachable  = errors.New(api.MsgUnreachable)
	ErrUnauthorized = api.ErrUnauthorized
	ErrRateLimited  = api.ErrRateLimited
)

// APIError is a non-2xx answer carrying the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

// Client talks to a running fest server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for baseURL. token is sent as a bearer token
// on every request.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type request struct {
	method  string
	path    string
	body    any
	headers map[string]string
}

// send performs req and returns the open response for 2xx answers.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	var rd io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		hr.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range req.headers {
		hr.Header.Set(k, v)
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(b, &body) == nil {
		apiErr.Code, apiErr.Message = body.Code, body.Message
	}
	return nil, apiErr
}

// do performs req and decodes a JSON answer into out when out is not nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, path: "/healthz"}, nil)
}

// Events lists event definitions.
func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	err := c.do(ctx, request{method: http.MethodGet, path: api.PublicPrefix + "/events"}, &out)
	return out, err
}

// EventInput is the body of an event create.
type EventInput struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	StageType string `json:"stageType,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Date      string `json:"date,omitempty"`
}

// CreateEvent creates an event definition.
func (c *Client) CreateEvent(ctx context.Context, in EventInput) (model.Event, error) {
	var out model.Event
	err := c.do(ctx, request{method: http.MethodPost, path: api.AdminPrefix + "/events", body: in, headers: idempotency()}, &out)
	return out, err
}

// ResultInput is the body of a result create.
type ResultInput struct {
	EventName   string `json:"eventName"`
	Placing     string `json:"placing,omitempty"`
	Category    string `json:"category,omitempty"`
	Grade       string `json:"grade,omitempty"`
	StudentName string `json:"studentName,omitempty"`
	ChestNumber string `json:"chestNumber,omitempty"`
	Team        string `json:"team,omitempty"`
}

// CreateResult records a placement. confirm accepts a placing that is
// already awarded for the event.
func (c *Client) CreateResult(ctx context.Context, in ResultInput, confirm bool) (model.Placement, error) {
	path := api.AdminPrefix + "/results"
	if confirm {
		path += "?confirm=true"
	}
	var out model.Placement
	err := c.do(ctx, request{method: http.MethodPost, path: path, body: in, headers: idempotency()}, &out)
	return out, err
}

// Register submits a public registration.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.Registration, error) {
	body := map[string]any{
		"fullName":       reg.FullName,
		"cicNumber":      reg.CICNumber,
		"chestNumber":    reg.ChestNumber,
		"team":           reg.Team,
		"onStageEvents":  reg.OnStageEvents,
		"offStageEvents": reg.OffStageEvents,
		"generalEvents":  reg.GeneralEvents,
	}
	var out model.Registration
	err := c.do(ctx, request{method: http.MethodPost, path: api.PublicPrefix + "/registrations", body: body}, &out)
	return out, err
}

// Recalculate recomputes stored points.
func (c *Client) Recalculate(ctx context.Context) (scoring.RecalcReport, error) {
	var out scoring.RecalcReport
	err := c.do(ctx, request{method: http.MethodPost, path: api.AdminPrefix + "/results/recalculate"}, &out)
	return out, err
}

// Standings fetches the public standings.
func (c *Client) Standings(ctx context.Context) (types.Standings, error) {
	var out types.Standings
	err := c.do(ctx, request{method: http.MethodGet, path: api.PublicPrefix + "/standings"}, &out)
	return out, err
}

// TopIndividuals fetches the first n ranked students.
func (c *Client) TopIndividuals(ctx context.Context, n int) ([]types.IndividualEntry, error) {
	var out []types.IndividualEntry
	path := api.PublicPrefix + "/standings/individuals?limit=" + strconv.Itoa(n)
	err := c.do(ctx, request{method: http.MethodGet, path: path}, &out)
	return out, err
}

// Download streams an admin export into w.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: api.AdminPrefix + path})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", path, err)
	}
	return n, nil
}

func idempotency() map[string]string {
	return map[string]string{api.HeaderIdempotencyKey: uuid.NewString()}
}
