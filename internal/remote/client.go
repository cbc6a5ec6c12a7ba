// Package remote stores records in a hosted PostgREST-style database.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

// Error is a non-2xx response from the remote database.
type Error struct {
	Method     string
	Table      string
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote %s %s: %d %s: %s", e.Method, e.Table, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("remote %s %s: %d: %s", e.Method, e.Table, e.StatusCode, e.Message)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Postgres error codes surfaced through PostgREST.
const (
	pgForeignKey = "23503"
	pgCheck      = "23514"
	pgNotNull    = "23502"
)

// Client talks to the /rest/v1 endpoint of a hosted database.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends one request. When out is non-nil the response body is decoded
// into it. The representation header asks the server to echo written rows.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", table, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, table, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.send(req, table)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

// count asks for the exact number of rows matching query with a HEAD
// request, so the server's max-rows cap does not apply.
func (c *Client) count(ctx context.Context, table string, query url.Values) (int, error) {
	req, err := c.newRequest(ctx, http.MethodHead, table, query, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.send(req, table)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	// Content-Range is "0-24/3573", or "*/0" for an empty table.
	cr := resp.Header.Get("Content-Range")
	_, total, ok := strings.Cut(cr, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("count %s: no total in Content-Range %q", table, cr)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("count %s: bad Content-Range %q", table, cr)
	}
	return n, nil
}

func (c *Client) newRequest(ctx context.Context, method, table string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send performs req and turns a non-2xx status into an *Error. The caller
// closes the body of a successful response.
func (c *Client) send(req *http.Request, table string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote %s %s: %w", req.Method, table, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	rerr := &Error{Method: req.Method, Table: table, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
		rerr.Code, rerr.Message = eb.Code, eb.Message
	}
	return nil, rerr
}

// writeErr turns constraint violations into validation errors so remote and
// local writes fail the same way.
func writeErr(collection string, err error) error {
	rerr, ok := err.(*Error)
	if !ok {
		return err
	}
	switch rerr.Code {
	case pgForeignKey:
		return &model.WriteError{Collection: collection, Field: "command_id", Reason: "references a missing command"}
	case pgCheck, pgNotNull:
		return &model.WriteError{Collection: collection, Reason: rerr.Message}
	}
	return err
}

func eq(v any) string { return fmt.Sprintf("eq.%v", v) }
