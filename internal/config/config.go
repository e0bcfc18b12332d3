package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	RedisAddr string
	CartTTL   time.Duration

	ShippingFeeCents int64
	TaxRate          decimal.Decimal
	PromoCodes       map[string]decimal.Decimal
	PromoDelay       time.Duration

	CatalogAPIURL string

	WooCommerceURL    string
	WooCommerceKey    string
	WooCommerceSecret string

	KafkaBrokers    string
	KafkaOrderTopic string
}

// FromEnv builds Config with defaults, overridden by environment variables.
// An empty DB_DSN runs the catalog from in-memory demo data.
func FromEnv() Config {
	return Config{
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:      envOrDefault("DB_DSN", ""),
		ShutdownTimeout:   envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CORSOrigins:       envList("CORS_ORIGINS", []string{"*"}),
		RedisAddr:         envOrDefault("REDIS_ADDR", ""),
		CartTTL:           envDuration("CART_TTL_SECONDS", 7*24*time.Hour),
		ShippingFeeCents:  envInt64("SHIPPING_FEE_CENTS", 999),
		TaxRate:           envDecimal("TAX_RATE", decimal.Zero),
		PromoCodes:        envPromoCodes("PROMO_CODES", "SAVE15=0.15"),
		PromoDelay:        envMillis("PROMO_DELAY_MS", 0),
		CatalogAPIURL:     strings.TrimRight(envOrDefault("CATALOG_API_URL", ""), "/"),
		WooCommerceURL:    strings.TrimRight(envOrDefault("WC_BASE_URL", ""), "/"),
		WooCommerceKey:    envOrDefault("WC_CONSUMER_KEY", ""),
		WooCommerceSecret: envOrDefault("WC_CONSUMER_SECRET", ""),
		KafkaBrokers:      envOrDefault("KAFKA_BROKERS", ""),
		KafkaOrderTopic:   envOrDefault("KAFKA_ORDER_TOPIC", "storefront.orders.confirmed"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		ms, err := strconv.Atoi(v)
		if err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return n
		}
	}
	return def
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// envPromoCodes parses "CODE=rate,CODE2=rate". Malformed pairs are skipped.
func envPromoCodes(key, def string) map[string]decimal.Decimal {
	return ParsePromoCodes(envOrDefault(key, def))
}

// ParsePromoCodes parses a comma separated CODE=rate list into an upper-cased map.
func ParsePromoCodes(raw string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		code, rate, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		d, err := decimal.NewFromString(strings.TrimSpace(rate))
		if code == "" || err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
			continue
		}
		out[code] = d
	}
	return out
}
