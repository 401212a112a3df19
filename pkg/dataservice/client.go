package dataservice

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
)

const defaultTimeout = 15 * time.Second

// Client is an HTTP client for one data-service project.
type Client struct {
	baseURL    string
	apiKey     string
	bearer     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBearer sets the Authorization credential. Without it the client
// authorizes as the key itself, which is what privileged service clients do.
func WithBearer(token string) Option {
	return func(c *Client) {
		c.bearer = token
	}
}

// New creates a client for one project endpoint. key is sent as the apikey
// header on every request and doubles as the bearer credential unless
// WithBearer overrides it.
func New(baseURL, key string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  key,
		bearer:  key,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query narrows a Select or Update to specific rows.
type Query struct {
	// Select lists the columns to return, comma-separated. Empty means all.
	Select string

	// Filters maps column names to predicates, e.g. "id" -> "eq.42".
	Filters map[string]string

	// Order is a column with optional direction, e.g. "effective_from.desc".
	Order string

	// Limit caps the number of rows returned. Zero means no cap.
	Limit int
}

// Eq builds an equality predicate for Query.Filters.
func Eq(value string) string {
	return "eq." + value
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Select != "" {
		v.Set("select", q.Select)
	}
	for col, pred := range q.Filters {
		v.Set(col, pred)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// APIError is a non-2xx response from the data service, with the message
// decoded from the project's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("data service error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("data service error (status %d): %s", e.Status, e.Message)
}

// AuthUser is the verified identity returned by the auth project.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Select fetches rows from table and decodes the JSON array into dst.
func (c *Client) Select(ctx context.Context, table string, q Query, dst interface{}) error {
	resp, err := c.rest(ctx, http.MethodGet, table, q, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	return decodeRows(resp.Body, table, dst)
}

// Insert posts payload (a row or slice of rows) to table and decodes the
// inserted rows into dst. dst may be nil when the caller does not need them.
func (c *Client) Insert(ctx context.Context, table string, payload interface{}, dst interface{}) error {
	resp, err := c.rest(ctx, http.MethodPost, table, Query{}, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	if dst == nil {
		return nil
	}
	return decodeRows(resp.Body, table, dst)
}

// Update patches the rows matched by q with the fields in patch and decodes
// the updated rows into dst. dst may be nil.
func (c *Client) Update(ctx context.Context, table string, patch interface{}, q Query, dst interface{}) error {
	resp, err := c.rest(ctx, http.MethodPatch, table, q, patch)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.parseError(resp)
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeRows(resp.Body, table, dst)
}

// VerifyToken exchanges the client's bearer credential for the identity that
// issued it. Only meaningful on clients built for the auth project.
func (c *Client) VerifyToken(ctx context.Context) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// rest issues one /rest/v1/{table} request.
func (c *Client) rest(ctx context.Context, method, table string, q Query, body interface{}) (*http.Response, error) {
	u := c.baseURL + "/rest/v1/" + url.PathEscape(table)
	if params := q.values(); len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", table, err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("apikey", c.apiKey)
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	return c.httpClient.Do(req)
}

func decodeRows(r io.Reader, table string, dst interface{}) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", table, err)
	}
	return nil
}

// parseError decodes the error body shapes the projects produce. The REST
// layer sends {code,message,details,hint}; the auth layer sends
// {error,error_description} or {msg} or {message}.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Err     string `json:"error"`
		ErrDesc string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &e)

	msg := e.Message
	if msg == "" {
		msg = e.ErrDesc
	}
	if msg == "" {
		msg = e.Msg
	}
	if msg == "" {
		msg = e.Err
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed: status %d", resp.StatusCode)
	}

	code := e.Code
	if code == "" {
		code = e.Err
	}

	return &APIError{Status: resp.StatusCode, Code: code, Message: msg}
}
