// Package rest implements the ItemStore port against the hosted database's
// REST interface (PostgREST conventions: filter query params, Prefer
// headers, JSON array responses).
package rest

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

	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

const itemsTable = "items"

type Client struct {
	baseURL string
	apiKey  string
	token   string
	http    *http.Client
}

var _ remote.ItemStore = (*Client)(nil)

// New creates a REST client. baseURL is the project root (the /rest/v1 path
// is appended); apiKey is sent on every request, token is the user's access
// token for row-level security.
func New(baseURL, apiKey, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) ListByOwner(ctx context.Context, ownerID string) ([]core.Item, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("owner_id", "eq."+ownerID)
	q.Set("order", "expiry_date.asc.nullslast,created_at.asc")

	body, err := c.do(ctx, http.MethodGet, itemsTable, q, nil, "")
	if err != nil {
		return nil, remote.NewError("list", codeFor(err), err)
	}

	var records []itemRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, remote.NewError("list", remote.CodeRejected, fmt.Errorf("decode items: %w", err))
	}

	items := make([]core.Item, 0, len(records))
	for _, rec := range records {
		item, err := rec.toItem()
		if err != nil {
			return nil, remote.NewError("list", remote.CodeRejected, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) Create(ctx context.Context, draft core.Item) (core.Item, error) {
	if err := draft.Validate(); err != nil {
		return core.Item{}, remote.NewError("create", remote.CodeRejected, err)
	}

	payload, err := json.Marshal(recordFromItem(draft))
	if err != nil {
		return core.Item{}, remote.NewError("create", remote.CodeRejected, fmt.Errorf("encode item: %w", err))
	}

	body, err := c.do(ctx, http.MethodPost, itemsTable, nil, payload, "return=representation")
	if err != nil {
		return core.Item{}, remote.NewError("create", codeFor(err), err)
	}

	var records []itemRecord
	if err := json.Unmarshal(body, &records); err != nil || len(records) != 1 {
		return core.Item{}, remote.NewError("create", remote.CodeRejected, fmt.Errorf("decode created item: %w", err))
	}
	return records[0].toItem()
}

func (c *Client) Delete(ctx context.Context, ownerID, itemID string) error {
	q := url.Values{}
	q.Set("id", "eq."+itemID)
	q.Set("owner_id", "eq."+ownerID)

	body, err := c.do(ctx, http.MethodDelete, itemsTable, q, nil, "return=representation")
	if err != nil {
		return remote.NewError("delete", codeFor(err), err)
	}

	// With return=representation an empty array means the filter matched
	// nothing, which the caller needs to distinguish from success.
	var records []itemRecord
	if err := json.Unmarshal(body, &records); err == nil && len(records) == 0 {
		return remote.NotFound("delete")
	}
	return nil
}

func (c *Client) UpdateStatus(ctx context.Context, ownerID, itemID, status string) error {
	q := url.Values{}
	q.Set("id", "eq."+itemID)
	q.Set("owner_id", "eq."+ownerID)

	payload, err := json.Marshal(map[string]string{"renewal_status": status})
	if err != nil {
		return remote.NewError("update_status", remote.CodeRejected, err)
	}

	body, err := c.do(ctx, http.MethodPatch, itemsTable, q, payload, "return=representation")
	if err != nil {
		return remote.NewError("update_status", codeFor(err), err)
	}

	var records []itemRecord
	if err := json.Unmarshal(body, &records); err == nil && len(records) == 0 {
		return remote.NotFound("update_status")
	}
	return nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// errRemoteRejected marks non-2xx responses so codeFor can classify them
// apart from transport failures.
var errRemoteRejected = errors.New("request rejected")

func (c *Client) do(ctx context.Context, method, table string, q url.Values, body []byte, prefer string) ([]byte, error) {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: status %d: %s: %w",
			method, table, resp.StatusCode, strings.TrimSpace(string(data)), errRemoteRejected)
	}
	return data, nil
}

func codeFor(err error) string {
	if errors.Is(err, errRemoteRejected) {
		return remote.CodeRejected
	}
	return remote.CodeNetwork
}
