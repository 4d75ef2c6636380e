package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (MAISON_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (MAISON_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL     string `default:"redis://localhost:6379/0" usage:"Redis connection URL for cart storage" flag:"redis-url"`
	ImageBaseURL string `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com)" flag:"image-base-url"`
	Currency     string `default:"NGN" usage:"ISO currency code for charges"`
	Kafka        KafkaConfig
	Pricing      PricingConfig
	Cart         CartConfig
	Payment      PaymentConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// KafkaConfig controls the event stream. Leaving Brokers empty disables
// publishing.
type KafkaConfig struct {
	Brokers []string `usage:"Kafka broker addresses; empty disables event publishing"`
	Topic   string   `default:"storefront.events" usage:"Kafka topic for domain events"`
}

// PricingConfig controls cart total computation.
type PricingConfig struct {
	TaxRate               float64 `default:"0.075" usage:"Tax rate applied to the pre-discount subtotal" flag:"tax-rate"`
	FreeShippingThreshold float64 `default:"50000" usage:"Pre-discount subtotal at or above which shipping is free" flag:"free-shipping-threshold"`
}

// CartConfig controls cart persistence.
type CartConfig struct {
	TTL time.Duration `default:"720h" usage:"Idle lifetime of a stored cart"`
}

// PaymentConfig controls the simulated payment gateway.
type PaymentConfig struct {
	Latency     time.Duration `default:"300ms" usage:"Simulated gateway latency"`
	FailureRate float64       `default:"0.1" usage:"Probability of a simulated charge failure" flag:"failure-rate"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "MAISON",
		Files:     []string{"config.yaml", "/etc/maison/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set MAISON_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's MAISON_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.RedisURL == "redis://localhost:6379/0" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
