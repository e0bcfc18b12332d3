package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	promosvc "storefront/internal/service/promo"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCategoryService struct {
	err error
}

func (s *stubCategoryService) List(context.Context) ([]domain.Category, error) {
	return nil, s.err
}

func testDeps() Deps {
	products := productrepo.NewMemory(
		domain.Product{Key: "linen-shirt", SKU: "LS-1", Name: "Linen Shirt", PriceCents: 7999, Currency: "USD", CategoryKey: "shirts"},
		domain.Product{Key: "canvas-tote", SKU: "CT-1", Name: "Canvas Tote", PriceCents: 6998, Currency: "USD", CategoryKey: "bags"},
	)
	categories := categoryrepo.NewMemory(
		domain.Category{Key: "shirts", Name: "Shirts"},
		domain.Category{Key: "bags", Name: "Bags"},
	)
	promos := promosvc.New(0, promosvc.StaticSource{"SAVE15": decimal.RequireFromString("0.15")})
	carts := cartsvc.New(cartrepo.NewMemory(), products, promos, pricing.New(pricing.DefaultShippingFeeCents, decimal.Zero))
	return Deps{
		ProductSvc:  productsvc.New(products),
		CategorySvc: categorysvc.New(categories),
		CartSvc:     carts,
		CheckoutSvc: checkoutsvc.New(carts),
	}
}

func newRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	router, err := buildRouter(logDiscard(), deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	gin.SetMode(gin.TestMode)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestBuildRouter_RequiresServices(t *testing.T) {
	if _, err := buildRouter(logDiscard(), Deps{}); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func TestHealthAndReady(t *testing.T) {
	deps := testDeps()
	router := newRouter(t, deps)
	if rec := do(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready without dependencies, got %d", rec.Code)
	}

	deps.ReadyChecks = map[string]PingFunc{"db": func(context.Context) error { return errors.New("down") }}
	rec := do(t, newRouter(t, deps), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "db not reachable") {
		t.Fatalf("expected 503 for failing db, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCatalogRoutes(t *testing.T) {
	router := newRouter(t, testDeps())

	rec := do(t, router, http.MethodGet, "/products?limit=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := decode[pagedList[domain.Product]](t, rec)
	if page.Total != 2 || page.Count != 1 || page.Results[0].Name != "Linen Shirt" {
		t.Fatalf("unexpected page %+v", page)
	}

	rec = do(t, router, http.MethodGet, "/products?category=bags", "")
	if page := decode[pagedList[domain.Product]](t, rec); page.Total != 1 || page.Results[0].Key != "canvas-tote" {
		t.Fatalf("unexpected filtered page %+v", page)
	}

	if rec := do(t, router, http.MethodGet, "/products/2", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Canvas Tote"`) {
		t.Fatalf("unexpected product response %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodGet, "/products/99", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/products/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/categories?offset=5", "")
	if page := decode[pagedList[domain.Category]](t, rec); page.Total != 2 || page.Count != 0 || page.Results == nil {
		t.Fatalf("unexpected category page %+v", page)
	}
}

func TestCategories_InternalError(t *testing.T) {
	deps := testDeps()
	deps.CategorySvc = &stubCategoryService{err: errors.New("boom")}
	rec := do(t, newRouter(t, deps), http.MethodGet, "/categories", "")
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("expected opaque 500, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCartRoutes(t *testing.T) {
	router := newRouter(t, testDeps())

	rec := do(t, router, http.MethodPost, "/carts", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	cart := decode[cartsvc.View](t, rec)
	base := "/carts/" + cart.ID

	do(t, router, http.MethodPost, base+"/items", `{"productId":1,"quantity":2}`)
	rec = do(t, router, http.MethodPost, base+"/items", `{"productId":2}`)
	cart = decode[cartsvc.View](t, rec)
	if len(cart.Items) != 2 || cart.Totals.SubtotalCents != 22996 {
		t.Fatalf("unexpected cart %+v", cart)
	}

	rec = do(t, router, http.MethodPost, base+"/promo", `{"code":"save15"}`)
	cart = decode[cartsvc.View](t, rec)
	if cart.Totals.DiscountCents != 3449 || cart.Totals.TotalCents != 20546 || cart.Promo.LastResult != domain.PromoResultSuccess {
		t.Fatalf("unexpected totals after promo %+v", cart.Totals)
	}

	tote := cart.Items[1].LineID
	rec = do(t, router, http.MethodPost, base+"/items/"+tote+"/decrement", "")
	if cart = decode[cartsvc.View](t, rec); len(cart.Items) != 1 {
		t.Fatalf("expected decrement at 1 to remove the line, got %+v", cart.Items)
	}

	shirt := cart.Items[0].LineID
	rec = do(t, router, http.MethodPut, base+"/items/"+shirt, `{"quantity":0}`)
	if cart = decode[cartsvc.View](t, rec); cart.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", cart.Items[0].Quantity)
	}
	rec = do(t, router, http.MethodPost, base+"/items/"+shirt+"/increment", "")
	if cart = decode[cartsvc.View](t, rec); cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if rec := do(t, router, http.MethodDelete, base+"/items/"+shirt, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on remove, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodDelete, base+"/items/"+shirt, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected remove to be idempotent, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, base, "")
	if cart = decode[cartsvc.View](t, rec); len(cart.Items) != 0 || cart.Totals.TotalCents != 0 {
		t.Fatalf("expected empty cart with zero total, got %+v", cart)
	}
}

func TestCartRoutes_Errors(t *testing.T) {
	router := newRouter(t, testDeps())
	cart := decode[cartsvc.View](t, do(t, router, http.MethodPost, "/carts", ""))
	base := "/carts/" + cart.ID

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/carts/missing", "", http.StatusNotFound},
		{http.MethodPost, base + "/items", `{"productId":`, http.StatusBadRequest},
		{http.MethodPost, base + "/items", `{}`, http.StatusBadRequest},
		{http.MethodPost, base + "/items", `{"productId":99}`, http.StatusNotFound},
		{http.MethodPut, base + "/items/nope", `{"quantity":3}`, http.StatusNotFound},
		{http.MethodPost, base + "/promo", `{"code":"  "}`, http.StatusBadRequest},
		{http.MethodPost, base + "/checkout", "", http.StatusConflict},
		{http.MethodGet, "/checkouts/missing", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		if rec := do(t, router, tc.method, tc.path, tc.body); rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d body=%s", tc.method, tc.path, tc.want, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, router, http.MethodPost, base+"/promo", `{"code":"BOGUS"}`)
	cart = decode[cartsvc.View](t, rec)
	if rec.Code != http.StatusOK || cart.Promo.LastResult != domain.PromoResultFailure || cart.Totals.DiscountCents != 0 {
		t.Fatalf("expected rejected promo to be reported on the cart, got %d %+v", rec.Code, cart.Promo)
	}
}

func TestCheckoutRoutes_ThreeNextsReachConfirmation(t *testing.T) {
	router := newRouter(t, testDeps())
	cart := decode[cartsvc.View](t, do(t, router, http.MethodPost, "/carts", ""))
	do(t, router, http.MethodPost, "/carts/"+cart.ID+"/items", `{"productId":1,"quantity":2}`)
	do(t, router, http.MethodPost, "/carts/"+cart.ID+"/items", `{"productId":2}`)
	do(t, router, http.MethodPost, "/carts/"+cart.ID+"/promo", `{"code":"SAVE15"}`)

	rec := do(t, router, http.MethodPost, "/carts/"+cart.ID+"/checkout", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	flow := decode[checkoutsvc.View](t, rec)
	base := "/checkouts/" + flow.ID

	rec = do(t, router, http.MethodPost, base+"/next", "")
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), `"shipping.email":"is required"`) {
		t.Fatalf("expected 422 with field errors, got %d body=%s", rec.Code, rec.Body.String())
	}

	shipping := `{"fullName":"Ada Lovelace","email":"ada@example.com","phone":"555-0100","address":"1 Main St","city":"London","postalCode":"N1","country":"GB"}`
	if rec := do(t, router, http.MethodPut, base+"/shipping", shipping); rec.Code != http.StatusOK {
		t.Fatalf("set shipping: %d %s", rec.Code, rec.Body.String())
	}
	if flow = decode[checkoutsvc.View](t, do(t, router, http.MethodPost, base+"/next", "")); flow.Step != domain.StepPayment {
		t.Fatalf("expected payment step, got %s", flow.Step)
	}

	if rec := do(t, router, http.MethodPut, base+"/shipping", shipping); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 editing shipping on payment step, got %d", rec.Code)
	}

	payment := `{"method":"creditCard","cardNumber":"4242 4242 4242 4242","expiryDate":"12/40","cvv":"123","nameOnCard":"Ada Lovelace"}`
	rec = do(t, router, http.MethodPut, base+"/payment", payment)
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "4242424242424242") || strings.Contains(rec.Body.String(), `"cvv":"123"`) {
		t.Fatalf("expected masked card in response, got %d %s", rec.Code, rec.Body.String())
	}
	flow = decode[checkoutsvc.View](t, do(t, router, http.MethodPost, base+"/next", ""))
	if flow.Step != domain.StepReview {
		t.Fatalf("expected review step, got %s", flow.Step)
	}
	reviewTotal := flow.Draft.Totals.TotalCents

	rec = do(t, router, http.MethodPost, base+"/next", "")
	flow = decode[checkoutsvc.View](t, rec)
	if rec.Code != http.StatusOK || flow.Step != domain.StepConfirmation || flow.Confirmation == nil {
		t.Fatalf("expected confirmation, got %d %s", rec.Code, rec.Body.String())
	}
	if flow.Confirmation.Totals.TotalCents != reviewTotal || reviewTotal != 20546 {
		t.Fatalf("confirmation total %d, review total %d", flow.Confirmation.Totals.TotalCents, reviewTotal)
	}
	if !strings.HasPrefix(flow.Confirmation.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order number %q", flow.Confirmation.OrderNumber)
	}

	if rec := do(t, router, http.MethodPost, base+"/back", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected confirmation to be terminal, got %d", rec.Code)
	}
	cart = decode[cartsvc.View](t, do(t, router, http.MethodGet, "/carts/"+cart.ID, ""))
	if len(cart.Items) != 0 {
		t.Fatalf("expected cart cleared after confirmation, got %+v", cart.Items)
	}
}

func TestCheckoutRoutes_StaleSnapshotAndRefresh(t *testing.T) {
	router := newRouter(t, testDeps())
	cart := decode[cartsvc.View](t, do(t, router, http.MethodPost, "/carts", ""))
	do(t, router, http.MethodPost, "/carts/"+cart.ID+"/items", `{"productId":1}`)
	flow := decode[checkoutsvc.View](t, do(t, router, http.MethodPost, "/carts/"+cart.ID+"/checkout", ""))
	base := "/checkouts/" + flow.ID

	do(t, router, http.MethodPut, base+"/shipping", `{"fullName":"A B","email":"a@b.co","phone":"1","address":"x","city":"y","postalCode":"z","country":"US"}`)
	do(t, router, http.MethodPost, base+"/next", "")
	do(t, router, http.MethodPut, base+"/payment", `{"method":"paypal"}`)
	do(t, router, http.MethodPost, base+"/next", "")

	do(t, router, http.MethodPost, "/carts/"+cart.ID+"/items", `{"productId":2}`)
	if rec := do(t, router, http.MethodPost, base+"/submit", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for stale snapshot, got %d body=%s", rec.Code, rec.Body.String())
	}
	flow = decode[checkoutsvc.View](t, do(t, router, http.MethodPost, base+"/refresh", ""))
	if flow.Draft.Totals.SubtotalCents != 7999+6998 {
		t.Fatalf("expected refreshed subtotal, got %d", flow.Draft.Totals.SubtotalCents)
	}
	rec := do(t, router, http.MethodPost, base+"/submit", "")
	if flow = decode[checkoutsvc.View](t, rec); rec.Code != http.StatusOK || flow.Confirmation.PaymentLabel != "PayPal" {
		t.Fatalf("unexpected submit result %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	deps := testDeps()
	deps.Metrics = metrics.New(nil)
	router := newRouter(t, deps)
	do(t, router, http.MethodGet, "/healthz", "")
	rec := do(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `route="/healthz"`) {
		t.Fatalf("expected healthz request in metrics, got %d", rec.Code)
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	deps := testDeps()
	deps.CORSOrigins = []string{"https://shop.example"}
	router := newRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown origin, got %d", rec.Code)
	}
}
