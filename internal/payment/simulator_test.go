package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chargeReq() Request {
	return Request{
		OrderID:     "o-001",
		OrderNumber: "MN-20260315-7K2QF",
		Amount:      decimal.NewFromInt(46375),
		Currency:    "NGN",
		Method:      "card",
	}
}

func TestSimulator_Charge(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns a payment reference", func(t *testing.T) {
		s := NewSimulator(0, NeverFail())

		r, err := s.Charge(ctx, chargeReq())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(r.Reference, "pay_"))
		assert.False(t, r.ProcessedAt.IsZero())
	})

	t.Run("failure returns a transient gateway error", func(t *testing.T) {
		s := NewSimulator(0, AlwaysFail())

		_, err := s.Charge(ctx, chargeReq())

		var gwErr *GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.True(t, gwErr.Transient())
		assert.Contains(t, gwErr.Error(), "MN-20260315-7K2QF")
	})

	t.Run("retry after failure can succeed", func(t *testing.T) {
		calls := 0
		s := NewSimulator(0, func() bool {
			calls++
			return calls == 1
		})

		_, err := s.Charge(ctx, chargeReq())
		require.Error(t, err)

		r, err := s.Charge(ctx, chargeReq())
		require.NoError(t, err)
		assert.NotEmpty(t, r.Reference)
	})

	t.Run("cancelled context abandons the call", func(t *testing.T) {
		s := NewSimulator(time.Minute, NeverFail())

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Charge(cctx, chargeReq())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("references are unique per charge", func(t *testing.T) {
		s := NewSimulator(0, NeverFail())

		a, err := s.Charge(ctx, chargeReq())
		require.NoError(t, err)
		b, err := s.Charge(ctx, chargeReq())
		require.NoError(t, err)

		assert.NotEqual(t, a.Reference, b.Reference)
	})
}

func TestRandomFailure(t *testing.T) {
	assert.False(t, RandomFailure(0)(), "zero probability never fails")
	assert.True(t, RandomFailure(1)(), "unit probability always fails")
}
