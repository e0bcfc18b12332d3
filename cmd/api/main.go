package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"storefront/internal/client/catalogapi"
	"storefront/internal/client/woocommerce"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	promorepo "storefront/internal/repository/promo"
	"storefront/internal/seed"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	promosvc "storefront/internal/service/promo"
)

const checkoutMaxAge = 2 * time.Hour

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	readyChecks := map[string]httpserver.PingFunc{}

	var dbpool *pgxpool.Pool
	if cfg.DBConnString != "" {
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		dbpool = pool
		readyChecks["db"] = pool.Ping
	}

	var (
		products   productsvc.Source
		categories categorysvc.Source
	)
	switch {
	case cfg.CatalogAPIURL != "":
		client := catalogapi.New(cfg.CatalogAPIURL, catalogapi.WithLogger(logger))
		products = client
		categories = categorysvc.SourceFunc(client.ListCategories)
		logger.Printf("catalog: remote api %s", cfg.CatalogAPIURL)
	case dbpool != nil:
		products = productrepo.NewPostgres(dbpool, logger)
		categories = categoryrepo.NewPostgres(dbpool)
		logger.Printf("catalog: postgres")
	default:
		memProducts := productrepo.NewMemory()
		memCategories := categoryrepo.NewMemory()
		if err := seed.Apply(ctx, seed.Targets{Products: memProducts, Categories: memCategories}); err != nil {
			logger.Fatalf("seed memory catalog: %v", err)
		}
		products, categories = memProducts, memCategories
		logger.Printf("catalog: in-memory demo data")
	}

	var woo *woocommerce.Client
	if cfg.WooCommerceURL != "" {
		woo = woocommerce.New(cfg.WooCommerceURL, cfg.WooCommerceKey, cfg.WooCommerceSecret, woocommerce.WithLogger(logger))
	}

	sources := []promosvc.Source{promosvc.StaticSource(cfg.PromoCodes)}
	if dbpool != nil {
		sources = append(sources, promosvc.RepositorySource{Repo: promorepo.NewPostgres(dbpool, logger)})
	}
	if woo != nil {
		sources = append(sources, woocommerce.NewCouponSource(woo))
	}
	promoValidator := promosvc.New(cfg.PromoDelay, sources...)

	var carts cartrepo.Repository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		carts = cartrepo.NewRedis(rdb, cfg.CartTTL)
		readyChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Printf("carts: redis %s ttl=%s", cfg.RedisAddr, cfg.CartTTL)
	} else {
		carts = cartrepo.NewMemory()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cartService := cartsvc.New(carts, products, promoValidator,
		pricing.New(cfg.ShippingFeeCents, cfg.TaxRate),
		cartsvc.WithLogger(logger), cartsvc.WithRecorder(m))

	var sinks []checkoutsvc.OrderSink
	if woo != nil {
		sinks = append(sinks, woocommerce.NewOrderSink(woo))
	}
	publisher, err := events.NewOrderPublisher(events.NewClient(cfg.KafkaBrokers), cfg.KafkaOrderTopic, logger)
	switch {
	case err == nil:
		defer publisher.Close()
		sinks = append(sinks, publisher)
	case !errors.Is(err, events.ErrDisabled):
		logger.Fatalf("init kafka publisher: %v", err)
	}
	checkoutService := checkoutsvc.New(cartService,
		checkoutsvc.WithLogger(logger), checkoutsvc.WithRecorder(m), checkoutsvc.WithSinks(sinks...))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		ProductSvc:  productsvc.New(products),
		CategorySvc: categorysvc.New(categories),
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		Metrics:     m,
		ReadyChecks: readyChecks,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-pruneCtx.Done():
				return
			case <-ticker.C:
				if n := checkoutService.Prune(checkoutMaxAge); n > 0 {
					logger.Printf("checkout: pruned %d abandoned flows", n)
				}
			}
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
