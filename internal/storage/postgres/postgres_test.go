package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/shipping"
)

func TestShippingRepositoryList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, price, estimated_days FROM shipping_methods ORDER BY price`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "estimated_days"}).
			AddRow("standard", "Standard", decimal.NewFromInt(2500), 5).
			AddRow("interstate", "Interstate", decimal.NewFromInt(4000), 7).
			AddRow("express", "Express", decimal.NewFromInt(5000), 2))

	repo := NewShippingRepository(mock)
	methods, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 3)
	require.Equal(t, "standard", methods[0].ID)
	require.True(t, methods[0].Price.Equal(decimal.NewFromInt(2500)))
	require.Equal(t, 5, methods[0].EstimatedDays)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShippingRepositoryGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, price, estimated_days FROM shipping_methods WHERE id = \$1`).
		WithArgs("drone").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "estimated_days"}))

	repo := NewShippingRepository(mock)
	_, err = repo.GetByID(context.Background(), "drone")
	require.ErrorIs(t, err, shipping.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepositoryFindByCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery(`SELECT code, type, value, min_purchase, max_uses, uses, valid_from, valid_until, description`).
		WithArgs("welcome10").
		WillReturnRows(pgxmock.NewRows([]string{
			"code", "type", "value", "min_purchase", "max_uses", "uses", "valid_from", "valid_until", "description",
		}).AddRow(
			"WELCOME10", coupon.TypePercentage, decimal.NewFromInt(10), decimal.Zero, 0, 0, &from, &until, "10% off your first order",
		))

	repo := NewCouponRepository(mock)
	rule, err := repo.FindByCode(context.Background(), "welcome10")
	require.NoError(t, err)
	require.Equal(t, "WELCOME10", rule.Code)
	require.Equal(t, coupon.TypePercentage, rule.Type)
	require.True(t, rule.Value.Equal(decimal.NewFromInt(10)))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepositoryIncrementUses(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE coupons SET uses = uses \+ 1\s+WHERE code = UPPER\(\$1\) AND \(max_uses = 0 OR uses < max_uses\)`).
		WithArgs("NEWCUSTOMER").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewCouponRepository(mock)
	require.NoError(t, repo.IncrementUses(context.Background(), "NEWCUSTOMER"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepositoryIncrementUsesCappedOut(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// The guarded UPDATE touches zero rows once uses has reached max_uses,
	// so a racing increment surfaces the limit instead of overshooting it.
	mock.ExpectExec(`UPDATE coupons SET uses = uses \+ 1\s+WHERE code = UPPER\(\$1\) AND \(max_uses = 0 OR uses < max_uses\)`).
		WithArgs("NEWCUSTOMER").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewCouponRepository(mock)
	err = repo.IncrementUses(context.Background(), "NEWCUSTOMER")
	require.ErrorIs(t, err, coupon.ErrUsageLimitReached)
	require.NoError(t, mock.ExpectationsWereMet())
}
