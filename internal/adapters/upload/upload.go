// Package upload sends images to the hosted file service and returns their
// public URL.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

// Multipart field names understood by the file host.
const (
	FieldFile   = "file"
	FieldPreset = "upload_preset"
)

var (
	// ErrNotConfigured is returned when no upload URL is set.
	ErrNotConfigured = errors.New("upload: endpoint not configured")
	// ErrEmptyFile is returned for a zero-length upload.
	ErrEmptyFile = errors.New("upload: empty file")
	// ErrRejected is returned for a non-2xx response.
	ErrRejected = errors.New("upload: rejected by host")
	// ErrNoURL is returned when the host reply carries no URL.
	ErrNoURL = errors.New("upload: response has no url")
)

// Uploader stores a file and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Client posts multipart uploads with a fixed preset.
type Client struct {
	endpoint string
	preset   string
	timeout  time.Duration
	http     *http.Client
	log      logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds each upload.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// New creates a Client for endpoint using preset.
func New(endpoint, preset string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimSpace(endpoint),
		preset:   preset,
		timeout:  30 * time.Second,
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("upload")
	}
	return c
}

type hostReply struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends r as filename and returns the hosted URL, preferring the
// https variant.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (hosted string, err error) {
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		_ = metrics.RecordUpload(outcome)
	}()

	if c.endpoint == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(FieldFile, filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("upload: form file: %w", err)
	}
	n, err := io.Copy(part, r)
	if err != nil {
		return "", fmt.Errorf("upload: read file: %w", err)
	}
	if n == 0 {
		return "", ErrEmptyFile
	}
	if err := mw.WriteField(FieldPreset, c.preset); err != nil {
		return "", fmt.Errorf("upload: preset field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("upload: close form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("upload: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: send: %w", err)
	}
	defer resp.Body.Close()

	var reply hostReply
	decErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&reply)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if decErr == nil && reply.Error != nil && reply.Error.Message != "" {
			msg = reply.Error.Message
		}
		return "", fmt.Errorf("%w: %d %s", ErrRejected, resp.StatusCode, msg)
	}
	if decErr != nil {
		return "", fmt.Errorf("upload: decode reply: %w", decErr)
	}

	hosted = reply.SecureURL
	if hosted == "" {
		hosted = reply.URL
	}
	if hosted == "" {
		return "", ErrNoURL
	}
	c.log.Info(ctx, "image uploaded",
		logger.String("file", filepath.Base(filename)),
		logger.Int("bytes", int(n)),
	)
	return hosted, nil
}
