package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Client speaks the store's REST dialect: one resource per table, filters as
// "column=op.value" query parameters, mutations returning the affected rows
// via Prefer: return=representation.

// Filters maps column names to "op.value" expressions. Only the operators
// the backend actually uses are wrapped below.
type Filters map[string]string

func Eq(v interface{}) string { return fmt.Sprintf("eq.%v", v) }
func Lt(v interface{}) string { return fmt.Sprintf("lt.%v", v) }

// Error is a non-2xx reply from the store. Message carries the store's own
// "message" field and must not reach API clients verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store replied %d", e.StatusCode)
	}
	return fmt.Sprintf("store replied %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var sErr *Error
	return pkgerrors.As(err, &sErr) && sErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Select fetches rows from table into dest (a pointer to a slice). columns
// narrows the projection; pass "*" for all.
func (c *Client) Select(ctx context.Context, table string, filters Filters, columns string, dest interface{}) error {
	q := url.Values{}
	if columns == "" {
		columns = "*"
	}
	q.Set("select", columns)
	for col, expr := range filters {
		q.Set(col, expr)
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, q.Encode())
	return c.do(ctx, http.MethodGet, endpoint, nil, dest)
}

// Insert creates a row. When dest is non-nil the returned representation
// (a one-element array) is decoded into it.
func (c *Client) Insert(ctx context.Context, table string, body, dest interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	return c.do(ctx, http.MethodPost, endpoint, body, dest)
}

// Update patches the rows where idColumn equals idValue.
func (c *Client) Update(ctx context.Context, table, idColumn string, idValue, body, dest interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s=%s", c.baseURL, table, idColumn, url.QueryEscape(Eq(idValue)))
	return c.do(ctx, http.MethodPatch, endpoint, body, dest)
}

// Delete removes the rows where idColumn equals idValue.
func (c *Client) Delete(ctx context.Context, table, idColumn string, idValue interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s=%s", c.baseURL, table, idColumn, url.QueryEscape(Eq(idValue)))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(err, "encoding request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(err, "building request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	res, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, "calling store")
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return pkgerrors.Wrap(err, "reading store reply")
	}

	if res.StatusCode >= 400 {
		sErr := &Error{StatusCode: res.StatusCode}
		var detail struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &detail); err == nil {
			sErr.Message = detail.Message
		}
		return sErr
	}

	if dest == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return pkgerrors.Wrap(err, "decoding store reply")
	}
	return nil
}
