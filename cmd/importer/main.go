package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront/internal/client/woocommerce"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/repository/category"
	"storefront/internal/repository/product"
)

func main() {
	var (
		filePath string
		fromWoo  bool
	)
	flag.StringVar(&filePath, "file", "", "Path to a product CSV export")
	flag.BoolVar(&fromWoo, "woocommerce", false, "Import from the WooCommerce store at WC_BASE_URL instead of a file")
	flag.Parse()

	if filePath == "" && !fromWoo {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if cfg.DBConnString == "" {
		log.Fatalf("DB_DSN is required")
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	products := product.NewPostgres(pool, nil)
	categories := category.NewPostgres(pool)

	start := time.Now()
	var (
		count  int
		source string
	)
	if fromWoo {
		if cfg.WooCommerceURL == "" {
			log.Fatalf("WC_BASE_URL is required with -woocommerce")
		}
		store := woocommerce.New(cfg.WooCommerceURL, cfg.WooCommerceKey, cfg.WooCommerceSecret)
		count, err = importer.ImportWooCommerce(ctx, store, products, categories)
		source = cfg.WooCommerceURL
	} else {
		f, openErr := os.Open(filePath)
		if openErr != nil {
			log.Fatalf("open file: %v", openErr)
		}
		defer f.Close()
		count, err = importer.NewCSVImporter(f, products, categories).Run(ctx)
		source = filePath
	}
	if err != nil {
		log.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products from %s in %s\n", count, source, time.Since(start).Truncate(time.Millisecond))
}
