package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

var pricingKeys = []string{
	"APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "METRICS_NAMESPACE", "METRICS_QUOTE_BUCKETS_MS",
	"TRACING_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT", "TRACING_SAMPLING_RATIO",
	"PRICING_CARD_BONUS_MULTIPLIER", "PRICING_GIFT_BAG_WEIGHT_KG", "PRICING_GIFT_COUPON_THRESHOLD",
	"PRICING_GIFT_COUPON_START", "PRICING_COUPON_CAP_UNIT", "PRICING_COUPON_OVERRIDES",
}

func cleanEnv(overrides map[string]string) map[string]string {
	env := make(map[string]string, len(pricingKeys))
	for _, key := range pricingKeys {
		env[key] = ""
	}
	for key, value := range overrides {
		env[key] = value
	}
	return env
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(cleanEnv(nil))
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "fruitstore", cfg.MetricsNamespace)
	require.Equal(t, "none", cfg.TracingExporter)
	require.Equal(t, float64(1), cfg.TracingSamplingRatio)
	require.True(t, cfg.CardBonusMultiplier.Equal(decimal.NewFromInt(1)))
	require.True(t, cfg.GiftBagWeightKg.Equal(decimal.NewFromInt(5)))
	require.True(t, cfg.GiftCouponThreshold.Equal(decimal.NewFromInt(20000)))
	require.True(t, cfg.CouponCapUnit.Equal(decimal.NewFromInt(1000)))
	require.Empty(t, cfg.CouponOverrides)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(cleanEnv(map[string]string{
		"PRICING_CARD_BONUS_MULTIPLIER": "0.995",
		"PRICING_GIFT_COUPON_START":     "3",
		"PRICING_COUPON_OVERRIDES":      "A5-MAX10=7.5:2500, X10=12",
		"METRICS_QUOTE_BUCKETS_MS":      "1,5,10",
		"LOG_FORMAT":                    "Console",
	}))
	require.NoError(t, err)
	require.True(t, cfg.CardBonusMultiplier.Equal(decimal.RequireFromString("0.995")))
	require.Equal(t, 3, cfg.GiftCouponStart)
	require.Equal(t, "console", cfg.LogFormat)
	require.Equal(t, []float64{1, 5, 10}, cfg.MetricsBuckets)
	require.Len(t, cfg.CouponOverrides, 2)

	capped := cfg.CouponOverrides["A5-MAX10"]
	require.True(t, capped.Percent.Equal(decimal.RequireFromString("7.5")))
	require.NotNil(t, capped.Cap)
	require.True(t, capped.Cap.Equal(decimal.NewFromInt(2500)))
	require.Nil(t, cfg.CouponOverrides["X10"].Cap)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bonus above one":  {"PRICING_CARD_BONUS_MULTIPLIER": "1.2"},
		"bonus not number": {"PRICING_CARD_BONUS_MULTIPLIER": "lots"},
		"zero bag weight":  {"PRICING_GIFT_BAG_WEIGHT_KG": "0"},
		"exporter":         {"TRACING_EXPORTER": "zipkin"},
		"log format":       {"LOG_FORMAT": "xml"},
		"override":         {"PRICING_COUPON_OVERRIDES": "A5"},
		"override percent": {"PRICING_COUPON_OVERRIDES": "A5=abc"},
		"sampling ratio":   {"TRACING_SAMPLING_RATIO": "2"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadForTests(cleanEnv(env))
			require.ErrorIs(t, err, common.ErrInvalidConfiguration)
		})
	}
}
