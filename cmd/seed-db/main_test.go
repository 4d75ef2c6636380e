package main

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/storage/postgres"
)

func TestSeedCoupons(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	validFrom := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC)

	// The launch set carries a bounded validity window on every rule.
	mock.ExpectExec(`INSERT INTO coupons`).
		WithArgs("WELCOME10", coupon.TypePercentage, pgxmock.AnyArg(), pgxmock.AnyArg(),
			0, 0, &validFrom, &validUntil, "10% off your first order").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for range 3 {
		mock.ExpectExec(`INSERT INTO coupons`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	repo := postgres.NewCouponRepository(mock)
	require.NoError(t, seedCoupons(context.Background(), repo))
	require.NoError(t, mock.ExpectationsWereMet())
}
