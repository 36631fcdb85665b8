// Package items is a thin client for a single REST collection of JSON items.
//
// It issues GET to list the collection and POST to add to it. Non-2xx answers
// become *RequestFailedError, bodies that are not valid JSON become *DecodeError.
// Successful bodies are returned as decoded JSON without any shape check; numbers
// decode as json.Number so large ids survive a round trip.
// Retries, authentication and timeouts belong to the caller or the transport.
package items

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-items-client/pkg/httpclient"
)

// DefaultBaseURL points at a local development server.
const DefaultBaseURL = "http://localhost:8000/api/v1/items"

const (
	opList = "list items"
	opAdd  = "add item"
)

// Client talks to one items endpoint. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	endpoint string
	http     httpclient.Client
	log      Logger
}

// New returns a Client for endpoint. A nil transport falls back to a resty
// client without a timeout.
func New(endpoint string, transport httpclient.Client, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("items endpoint is empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse items endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("items endpoint %q must use http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("items endpoint %q has no host", endpoint)
	}
	if transport == nil {
		transport = httpclient.NewRestyClient(0)
	}

	c := &Client{
		endpoint: endpoint,
		http:     transport,
		log:      noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured collection URL.
func (c *Client) Endpoint() string { return c.endpoint }

// ListItems fetches the whole collection. The decoded body is returned as-is,
// typically a []any of map[string]any.
func (c *Client) ListItems(ctx context.Context) (any, error) {
	start := time.Now()
	resp, err := c.http.Get(ctx, c.endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opList, err)
	}
	c.logResponse(http.MethodGet, resp.StatusCode(), start)

	if err := checkStatus(opList, resp); err != nil {
		return nil, err
	}

	return decodeBody(opList, resp.Body())
}

// AddItem posts item as JSON and returns the decoded response body, usually the
// created item. The item is encoded before any network call is made.
func (c *Client) AddItem(ctx context.Context, item any) (any, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}

	start := time.Now()
	resp, err := c.http.Post(ctx, c.endpoint, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opAdd, err)
	}
	c.logResponse(http.MethodPost, resp.StatusCode(), start)

	if err := checkStatus(opAdd, resp); err != nil {
		return nil, err
	}

	return decodeBody(opAdd, resp.Body())
}

// decodeBody decodes exactly one JSON value from body.
func decodeBody(op string, body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &DecodeError{Op: op, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, &DecodeError{Op: op, Err: err}
	}
	return out, nil
}

func checkStatus(op string, resp httpclient.Response) error {
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}
	return &RequestFailedError{
		Op:         op,
		StatusCode: code,
		Body:       string(resp.Body()),
	}
}

func (c *Client) logResponse(method string, status int, start time.Time) {
	c.log.DebugObj("items request completed", "items_request", map[string]any{
		"method":     method,
		"url":        c.endpoint,
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}
