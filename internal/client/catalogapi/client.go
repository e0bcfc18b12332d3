package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

// APIError is returned when the catalog API responds with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api %d: %s", e.Status, e.Body)
}

// Client reads products and categories from a generic commerce REST API.
type Client struct {
	baseURL    string
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

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type productRecord struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

type categoryRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// List calls GET /products.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	var records []productRecord
	if err := c.get(ctx, "/products", &records); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// GetByID finds a product in the GET /products listing.
func (c *Client) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListCategories calls GET /categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var records []categoryRecord
	if err := c.get(ctx, "/categories", &records); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(records))
	for _, r := range records {
		slug := r.Slug
		if slug == "" {
			slug = slugify(r.Name)
		}
		out = append(out, domain.Category{ID: r.ID, Key: slug, Name: r.Name, Slug: slug})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog api %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Printf("catalog api: GET %s status=%d", path, resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (r productRecord) toDomain() domain.Product {
	name := r.Name
	if name == "" {
		name = r.Title
	}
	category := slugify(r.Category)
	key := r.SKU
	if key == "" {
		key = fmt.Sprintf("product-%d", r.ID)
	}
	return domain.Product{
		ID:          r.ID,
		Key:         key,
		SKU:         r.SKU,
		Name:        name,
		Description: r.Description,
		PriceCents:  r.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency:    "USD",
		CategoryKey: category,
		Image:       r.Image,
	}
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), "-")
}
