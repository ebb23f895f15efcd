// Package storefront is a Go client for the storefront API together with a
// local cart mirror that survives restarts.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/product"
)

var ErrNoToken = errors.New("storefront: no token set")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

// NewClient targets the API mounted at baseURL, e.g. http://localhost:5000/api.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Client{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

// SetToken sets the bearer token sent on authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) HasToken() bool { return c.token != "" }

func (c *Client) Products(ctx context.Context, q product.ListQuery) (json.RawMessage, error) {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Select != "" {
		v.Set("select", q.Select)
	}
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/products", v, nil, &raw, false)
	return raw, err
}

func (c *Client) Product(ctx context.Context, id string) (product.Product, error) {
	var p product.Product
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &p, false)
	return p, err
}

func (c *Client) Categories(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/products/categories", nil, nil, &raw, false)
	return raw, err
}

func (c *Client) ByCategory(ctx context.Context, category string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/products/category/"+url.PathEscape(category), nil, nil, &raw, false)
	return raw, err
}

func (c *Client) Search(ctx context.Context, q string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/products/search", url.Values{"q": {q}}, nil, &raw, false)
	return raw, err
}

func (c *Client) Cart(ctx context.Context) (*cart.HydratedCart, error) {
	out := new(cart.HydratedCart)
	if err := c.do(ctx, http.MethodGet, "/cart", nil, nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*cart.Cart, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	out := new(cart.Cart)
	if err := c.do(ctx, http.MethodPost, "/cart", nil, body, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*cart.Cart, error) {
	out := new(cart.Cart)
	if err := c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), nil, map[string]int{"quantity": quantity}, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*cart.Cart, error) {
	out := new(cart.Cart)
	if err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil, nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil, nil, true)
}

// OrderRequest is the POST /orders body.
type OrderRequest struct {
	OrderItems      []cart.LineItem       `json:"orderItems"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	ItemsPrice      float64               `json:"itemsPrice"`
	TaxPrice        float64               `json:"taxPrice"`
	ShippingPrice   float64               `json:"shippingPrice"`
	TotalPrice      float64               `json:"totalPrice"`
}

// Payment is the PUT /orders/:id/pay body as sent by the payment provider.
type Payment struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*order.Order, error) {
	out := new(order.Order)
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Order(ctx context.Context, id string) (*order.Order, error) {
	out := new(order.Order)
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	err := c.do(ctx, http.MethodGet, "/orders/myorders", nil, nil, &out, true)
	return out, err
}

func (c *Client) PayOrder(ctx context.Context, id string, p Payment) (*order.Order, error) {
	out := new(order.Order)
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/pay", nil, p, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeliverOrder(ctx context.Context, id string) (*order.Order, error) {
	out := new(order.Order)
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/deliver", nil, nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, auth bool) error {
	if auth && c.token == "" {
		return ErrNoToken
	}
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		if msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
