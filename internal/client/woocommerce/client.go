package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiPrefix = "/wp-json/wc/v3"

// APIError is returned when the store responds with a non-2xx status.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woocommerce %d: %s (%s)", e.Status, e.Message, e.Code)
}

// Client talks to the WooCommerce REST API using consumer key auth.
type Client struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
	logger     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL, consumerKey, consumerSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        consumerKey,
		secret:     consumerSecret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.SetBasicAuth(c.key, c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("woocommerce %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Printf("woocommerce: %s %s status=%d", method, path, resp.StatusCode)
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return &APIError{Status: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
		}
		return &APIError{Status: resp.StatusCode, Code: "unknown", Message: http.StatusText(resp.StatusCode)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

// ListProducts calls GET /products for one page.
func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]Product, error) {
	var out []Product
	err := c.do(ctx, http.MethodGet, "/products", pageQuery(page, perPage), nil, &out)
	return out, err
}

// ListCoupons calls GET /coupons. A non-empty code filters by coupon code.
func (c *Client) ListCoupons(ctx context.Context, code string) ([]Coupon, error) {
	q := url.Values{}
	if code != "" {
		q.Set("code", code)
	}
	var out []Coupon
	err := c.do(ctx, http.MethodGet, "/coupons", q, nil, &out)
	return out, err
}

// CreateOrder calls POST /orders.
func (c *Client) CreateOrder(ctx context.Context, order Order) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, order, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if perPage > 0 {
		q.Set("per_page", fmt.Sprint(perPage))
	}
	return q
}
