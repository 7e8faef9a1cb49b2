// Package datagateway is a thin client for the Peekdata DataGateway API.
//
// Each method sends one request built with package models and returns the
// gateway's answer: a health flag, generated SQL text, a JSON report or a CSV
// file written to disk. Failures are returned as *TransportError.
package datagateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/peekdata/datagateway-go/internal/logging"
	"github.com/peekdata/datagateway-go/pkg/models"
)

// Gateway endpoints, relative to the base URL
const (
	PathHealthCheck = "/datagateway/v1/healthcheck"
	PathSelect      = "/datagateway/v1/select"
	PathData        = "/datagateway/v1/select/data"
	PathCSV         = "/datagateway/v1/select/file"
)

// Logger receives one debug entry per gateway call
type Logger interface {
	Debug(msg string, fields ...interface{})
}

// Client talks to a single DataGateway instance
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     Logger
	headers    http.Header
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every call, including reading the response body.
// Zero keeps the transport default. It applies to the HTTP client given by
// WithHTTPClient regardless of option order, without modifying it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the call logger
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// NewClient creates a client for scheme://host:port
func NewClient(host string, port int, scheme string, opts ...Option) *Client {
	c := &Client{
		baseURL:    scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port)),
		httpClient: &http.Client{},
		logger:     logging.NewNop(),
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns scheme://host:port
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthCheck reports whether the gateway answers its healthcheck with 2xx
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	if _, err := c.do(ctx, "healthcheck", http.MethodGet, PathHealthCheck, nil); err != nil {
		return false, err
	}
	return true, nil
}

// GetSelect returns the SQL the gateway would run for req
func (c *Client) GetSelect(ctx context.Context, req *models.Request) (string, error) {
	body, err := c.do(ctx, "get-select", http.MethodPost, PathSelect, req)
	if err != nil {
		return "", err
	}
	return strings.TrimRightFunc(string(body), unicode.IsSpace), nil
}

// GetData returns the report for req, re-serialized with sorted keys and
// four-space indentation
func (c *Client) GetData(ctx context.Context, req *models.Request) (string, error) {
	body, err := c.do(ctx, "get-data", http.MethodPost, PathData, req)
	if err != nil {
		return "", err
	}
	out, err := models.Reformat(body)
	if err != nil {
		return "", c.undecodable("get-data", PathData, body, err)
	}
	return out, nil
}

// GetDataResponse is GetData decoded into a models.Response
func (c *Client) GetDataResponse(ctx context.Context, req *models.Request) (*models.Response, error) {
	body, err := c.do(ctx, "get-data", http.MethodPost, PathData, req)
	if err != nil {
		return nil, err
	}
	resp, err := models.ParseResponse(body)
	if err != nil {
		return nil, c.undecodable("get-data", PathData, body, err)
	}
	return resp, nil
}

// undecodable reports a 2xx response whose body could not be decoded
func (c *Client) undecodable(op, path string, body []byte, err error) error {
	return &TransportError{
		Op:         op,
		Method:     http.MethodPost,
		URL:        c.baseURL + path,
		StatusCode: http.StatusOK,
		Body:       string(body),
		Err:        err,
	}
}

// GetCSV writes the CSV export of req to filename, replacing any existing
// file. Nothing is written when the call fails.
func (c *Client) GetCSV(ctx context.Context, req *models.Request, filename string) (bool, error) {
	body, err := c.do(ctx, "get-csv", http.MethodPost, PathCSV, req)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(filename); err == nil {
		if err := os.Remove(filename); err != nil {
			return false, fmt.Errorf("failed to remove %s: %w", filename, err)
		}
	}

	if err := os.WriteFile(filename, body, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return true, nil
}

// do sends one call and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, op, method, path string, payload *models.Request) ([]byte, error) {
	url := c.baseURL + path
	fail := func(status int, body string, err error) error {
		return &TransportError{Op: op, Method: method, URL: url, StatusCode: status, Body: body, Err: err}
	}

	var body io.Reader
	if payload != nil {
		doc, err := models.Serialize(payload)
		if err != nil {
			return nil, fail(0, "", err)
		}
		body = bytes.NewBufferString(doc)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fail(0, "", err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("Gateway call failed", "op", op, "method", method, "url", url, "error", err)
		return nil, fail(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	c.logger.Debug("Gateway call",
		"op", op,
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	if err != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(resp.StatusCode, strings.TrimSpace(string(data)), nil)
	}
	return data, nil
}
