package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/noah-isme/fruitstore-pricing/internal/cart"
	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
	"github.com/noah-isme/fruitstore-pricing/internal/common"
	"github.com/noah-isme/fruitstore-pricing/internal/config"
	"github.com/noah-isme/fruitstore-pricing/internal/coupon"
	"github.com/noah-isme/fruitstore-pricing/internal/pricing"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:              "test",
		LogLevel:            "disabled",
		LogFormat:           "json",
		MetricsNamespace:    "test",
		TracingExporter:     "none",
		CardBonusMultiplier: decimal.RequireFromString("0.995"),
		GiftBagWeightKg:     decimal.NewFromInt(5),
		GiftCouponThreshold: decimal.NewFromInt(20000),
		GiftCouponStart:     11,
		CouponCapUnit:       decimal.NewFromInt(1000),
	}
}

func TestNewWiresConfiguredPolicies(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, config.Validate(cfg))

	deps, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, deps.Shutdown(context.Background())) })

	period := pricing.NewPeriodBuilder("Normal").
		SetUnitPrice(catalog.Apple, decimal.NewFromInt(500)).
		SetUnitPrice(catalog.Banana, decimal.NewFromInt(450)).
		SetDiscount(catalog.Apple, decimal.NewFromInt(20), decimal.RequireFromString("0.15")).
		SetDiscount(catalog.Banana, decimal.NewFromInt(2), decimal.RequireFromString("0.1")).
		MustBuild()
	c := cart.MustNew(cart.NewItem(catalog.Apple, 100), cart.NewItem(catalog.Banana, 20))

	info, err := deps.Pricing.Price(context.Background(), c, period, nil, catalog.Card)
	require.NoError(t, err)
	require.True(t, info.Amount.Equal(decimal.NewFromInt(50347)), "got %s", info.Amount)
	require.Equal(t, []string{"KUPON-2000-ULTRAMAX", "A5"}, info.GiftCoupons)
	require.Equal(t, 24, info.GiftBagCount)

	families, err := deps.MetricsRegistry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	require.Same(t, deps.TracerProvider, otel.GetTracerProvider())
	require.NotNil(t, otel.GetTextMapPropagator())
	require.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	cfg := testConfig()
	cfg.CardBonusMultiplier = decimal.Zero
	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, common.ErrInvalidConfiguration)

	cfg = testConfig()
	cfg.CouponOverrides = map[string]coupon.Override{"KUPON-2000-ULTRAMAX": {Percent: decimal.NewFromInt(5)}}
	_, err = New(context.Background(), cfg)
	require.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = New(context.Background(), nil)
	require.Error(t, err)
}
