package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/maisonnoire/storefront/internal/catalog"
	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/shipping"
	"github.com/maisonnoire/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		shippingFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&shippingFile, "shipping-file", "db/seed/shipping_methods.json", "path to shipping methods JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, shippingFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, shippingFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedShippingMethods(ctx, postgres.NewShippingRepository(pool), shippingFile); err != nil {
		return errors.Wrap(err, "seed shipping methods")
	}

	if err := seedCoupons(ctx, postgres.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for i := range products {
		p := &products[i]
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedShippingMethods(ctx context.Context, repo *postgres.ShippingRepository, shippingFile string) error {
	slog.Info("reading shipping methods file", slog.String("path", shippingFile))

	data, err := os.ReadFile(shippingFile)
	if err != nil {
		return errors.Wrap(err, "read shipping methods file")
	}

	var methods []shipping.Method
	if err := json.Unmarshal(data, &methods); err != nil {
		return errors.Wrap(err, "parse shipping methods JSON")
	}

	slog.Info("upserting shipping methods", slog.Int("count", len(methods)))

	for i := range methods {
		m := &methods[i]
		if err := repo.Upsert(ctx, m); err != nil {
			return errors.Wrapf(err, "upsert shipping method %s", m.ID)
		}

		slog.Info("upserted shipping method", slog.String("id", m.ID), slog.String("name", m.Name))
	}

	return nil
}

func seedCoupons(ctx context.Context, repo *postgres.CouponRepository) error {
	slog.Info("seeding launch coupons")

	validFrom := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC)

	coupons := []coupon.Rule{
		{
			Code:        "WELCOME10",
			Type:        coupon.TypePercentage,
			Value:       decimal.NewFromInt(10),
			ValidFrom:   &validFrom,
			ValidUntil:  &validUntil,
			Description: "10% off your first order",
		},
		{
			Code:        "FREESHIP",
			Type:        coupon.TypeFreeShipping,
			MinPurchase: decimal.NewFromInt(20000),
			ValidFrom:   &validFrom,
			ValidUntil:  &validUntil,
			Description: "Free shipping on orders over ₦20,000",
		},
		{
			Code:        "NEWCUSTOMER",
			Type:        coupon.TypeFixed,
			Value:       decimal.NewFromInt(5000),
			MaxUses:     1000,
			ValidFrom:   &validFrom,
			ValidUntil:  &validUntil,
			Description: "₦5,000 off for new customers, first 1000 uses",
		},
		{
			Code:        "LUXURY20",
			Type:        coupon.TypePercentage,
			Value:       decimal.NewFromInt(20),
			MinPurchase: decimal.NewFromInt(100000),
			ValidFrom:   &validFrom,
			ValidUntil:  &validUntil,
			Description: "20% off orders over ₦100,000",
		},
	}

	for i := range coupons {
		c := &coupons[i]
		if err := repo.Upsert(ctx, c); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.Code)
		}

		slog.Info("upserted coupon", slog.String("code", c.Code), slog.String("description", c.Description))
	}

	return nil
}
