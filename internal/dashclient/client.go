// Package dashclient talks to the dashboard HTTP API. Client also implements
// builder.Persister against the layout endpoints.
package dashclient

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

	"github.com/AngelCh415/zenite-dash/internal/builder"
	"github.com/AngelCh415/zenite-dash/internal/models"
)

var ErrUnauthorized = errors.New("unauthorized")

// HTTPClient is the part of *http.Client used here.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// APIError is a non-2xx answer. Message is the server's {"error"} text when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("non-2xx: %d %s", e.Status, e.Message)
}

type Client struct {
	base  string
	token string
	httpc HTTPClient
}

// New returns a client for baseURL. A nil httpc uses a 15s timeout client.
func New(baseURL, token string, httpc HTTPClient) *Client {
	if httpc == nil {
		httpc = NewHTTPClient(15 * time.Second)
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), token: token, httpc: httpc}
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, v any) error {
	if c.base == "" {
		return errors.New("empty base url")
	}
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("health: status %q", out.Status)
	}
	return nil
}

// Data fetches the full dashboard payload.
func (c *Client) Data(ctx context.Context) (*models.DashData, error) {
	var d models.DashData
	if err := c.do(ctx, http.MethodGet, "/dash/data", nil, nil, &d); err != nil {
		return nil, fmt.Errorf("fetch dashboard: %w", err)
	}
	return &d, nil
}

func userQuery(userID string) url.Values {
	if userID == "" {
		userID = builder.DefaultUserID
	}
	return url.Values{"userId": {userID}}
}

// Load returns nil, nil when the server has no layout for the user.
func (c *Client) Load(ctx context.Context, userID string) (*builder.Snapshot, error) {
	var out struct {
		Layout *builder.Snapshot `json:"layout"`
	}
	if err := c.do(ctx, http.MethodGet, "/dash/builder/layout", userQuery(userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Layout, nil
}

type saveRequest struct {
	UserID  string           `json:"userId"`
	Widgets []builder.Widget `json:"widgets"`
	Layouts builder.Layouts  `json:"layouts"`
}

func (c *Client) Save(ctx context.Context, userID string, s builder.Snapshot) (time.Time, error) {
	if userID == "" {
		userID = builder.DefaultUserID
	}
	var out struct {
		Success bool      `json:"success"`
		SavedAt time.Time `json:"savedAt"`
	}
	req := saveRequest{UserID: userID, Widgets: s.Widgets, Layouts: s.Layouts}
	if err := c.do(ctx, http.MethodPost, "/dash/builder/layout", nil, req, &out); err != nil {
		return time.Time{}, err
	}
	if !out.Success {
		return time.Time{}, errors.New("save layout: server did not confirm")
	}
	return out.SavedAt, nil
}

func (c *Client) Delete(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/dash/builder/layout", userQuery(userID), nil, nil)
}

// LayoutSummary is one stored layout as listed by the server.
type LayoutSummary struct {
	Index  int    `json:"index"`
	UserID string `json:"userId"`
	builder.Snapshot
}

func (c *Client) Layouts(ctx context.Context) ([]LayoutSummary, error) {
	var out struct {
		Layouts []LayoutSummary `json:"layouts"`
	}
	if err := c.do(ctx, http.MethodGet, "/dash/builder/layouts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Layouts, nil
}

func (c *Client) Catalog(ctx context.Context) ([]builder.CatalogItem, error) {
	var out struct {
		Catalog []builder.CatalogItem `json:"catalog"`
	}
	if err := c.do(ctx, http.MethodGet, "/dash/builder/catalog", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Catalog, nil
}
