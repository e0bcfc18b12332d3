package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("PROMO_CODES", "")
	t.Setenv("SHIPPING_FEE_CENTS", "")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.DBConnString != "" {
		t.Fatalf("expected empty dsn, got %q", cfg.DBConnString)
	}
	if cfg.ShippingFeeCents != 999 {
		t.Fatalf("unexpected shipping fee %d", cfg.ShippingFeeCents)
	}
	rate, ok := cfg.PromoCodes["SAVE15"]
	if !ok || !rate.Equal(decimal.RequireFromString("0.15")) {
		t.Fatalf("expected demo promo code, got %v", cfg.PromoCodes)
	}
	if cfg.PromoDelay != 0 {
		t.Fatalf("expected no promo delay, got %s", cfg.PromoDelay)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("PROMO_DELAY_MS", "250")
	t.Setenv("TAX_RATE", "0.08")
	t.Setenv("CORS_ORIGINS", "https://shop.example, https://admin.example")
	t.Setenv("CATALOG_API_URL", "https://api.example/")

	cfg := FromEnv()
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
	if cfg.PromoDelay != 250*time.Millisecond {
		t.Fatalf("unexpected promo delay %s", cfg.PromoDelay)
	}
	if !cfg.TaxRate.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("unexpected tax rate %s", cfg.TaxRate)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.CatalogAPIURL != "https://api.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.CatalogAPIURL)
	}
}

func TestParsePromoCodes_SkipsMalformed(t *testing.T) {
	got := ParsePromoCodes("save15=0.15, bad, HALF=0.5, over=1.5, neg=-0.1, =0.2")
	if len(got) != 2 {
		t.Fatalf("expected 2 codes, got %v", got)
	}
	if !got["SAVE15"].Equal(decimal.RequireFromString("0.15")) || !got["HALF"].Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected codes %v", got)
	}
}
