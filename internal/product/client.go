package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxBody caps upstream responses.
const maxBody = 10 << 20

// Client talks to a dummyjson-compatible catalog over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid product source url %q: %w", baseURL, err)
	}
	return &Client{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	body, err := c.get(ctx, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return Product{}, err
	}
	var p Product
	if err := json.Unmarshal(body, &p); err != nil {
		return Product{}, fmt.Errorf("%w: decode product %s: %w", ErrUpstream, id, err)
	}
	return p, nil
}

func (c *Client) List(ctx context.Context, q ListQuery) (json.RawMessage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("skip", strconv.Itoa(q.Skip))
	if q.Select != "" {
		v.Set("select", q.Select)
	}
	return c.get(ctx, "/products", v)
}

func (c *Client) ByCategory(ctx context.Context, category string) (json.RawMessage, error) {
	return c.get(ctx, "/products/category/"+url.PathEscape(category), nil)
}

func (c *Client) Categories(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/products/categories", nil)
}

func (c *Client) Search(ctx context.Context, q string) (json.RawMessage, error) {
	return c.get(ctx, "/products/search", url.Values{"q": {q}})
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUpstream, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrUpstream, path, resp.StatusCode)
	}
	return body, nil
}
