package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
)

type productService interface {
	List(ctx context.Context, f productsvc.ListFilter) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Create(ctx context.Context) (*cartsvc.View, error)
	Get(ctx context.Context, cartID string) (*cartsvc.View, error)
	AddItem(ctx context.Context, cartID string, in cartsvc.AddItemInput) (*cartsvc.View, error)
	SetQuantity(ctx context.Context, cartID, lineID string, quantity int) (*cartsvc.View, error)
	Increment(ctx context.Context, cartID, lineID string) (*cartsvc.View, error)
	Decrement(ctx context.Context, cartID, lineID string) (*cartsvc.View, error)
	RemoveItem(ctx context.Context, cartID, lineID string) (*cartsvc.View, error)
	Clear(ctx context.Context, cartID string) (*cartsvc.View, error)
	ApplyPromo(ctx context.Context, cartID, code string) (*cartsvc.View, error)
}

type checkoutService interface {
	Begin(ctx context.Context, cartID string) (checkoutsvc.View, error)
	Get(ctx context.Context, id string) (checkoutsvc.View, error)
	SetShipping(ctx context.Context, id string, info domain.ShippingInfo) (checkoutsvc.View, error)
	SetPayment(ctx context.Context, id string, in checkoutsvc.PaymentInput) (checkoutsvc.View, error)
	Next(ctx context.Context, id string) (checkoutsvc.View, error)
	Back(ctx context.Context, id string) (checkoutsvc.View, error)
	Submit(ctx context.Context, id string) (checkoutsvc.View, error)
	Refresh(ctx context.Context, id string) (checkoutsvc.View, error)
}

// Deps are the services the router dispatches to. Metrics and ReadyChecks
// are optional.
type Deps struct {
	ProductSvc  productService
	CategorySvc categoryService
	CartSvc     cartService
	CheckoutSvc checkoutService
	Metrics     *metrics.Metrics
	ReadyChecks map[string]PingFunc
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.CategorySvc == nil || deps.CartSvc == nil || deps.CheckoutSvc == nil {
		return nil, errors.New("router: product, category, cart and checkout services are required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyChecks))

	catalog := &catalogHandlers{products: deps.ProductSvc, categories: deps.CategorySvc, logger: logger}
	router.GET("/products", catalog.listProducts)
	router.GET("/products/:id", catalog.getProduct)
	router.GET("/categories", catalog.listCategories)

	carts := &cartHandlers{svc: deps.CartSvc, logger: logger}
	router.POST("/carts", carts.create)
	router.GET("/carts/:id", carts.get)
	router.POST("/carts/:id/items", carts.addItem)
	router.DELETE("/carts/:id/items", carts.clear)
	router.PUT("/carts/:id/items/:lineId", carts.setQuantity)
	router.POST("/carts/:id/items/:lineId/increment", carts.increment)
	router.POST("/carts/:id/items/:lineId/decrement", carts.decrement)
	router.DELETE("/carts/:id/items/:lineId", carts.removeItem)
	router.POST("/carts/:id/promo", carts.applyPromo)

	checkouts := &checkoutHandlers{svc: deps.CheckoutSvc, logger: logger}
	router.POST("/carts/:id/checkout", checkouts.begin)
	router.GET("/checkouts/:id", checkouts.get)
	router.PUT("/checkouts/:id/shipping", checkouts.setShipping)
	router.PUT("/checkouts/:id/payment", checkouts.setPayment)
	router.POST("/checkouts/:id/next", checkouts.next)
	router.POST("/checkouts/:id/back", checkouts.back)
	router.POST("/checkouts/:id/submit", checkouts.submit)
	router.POST("/checkouts/:id/refresh", checkouts.refresh)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
