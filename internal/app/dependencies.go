package app

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/noah-isme/fruitstore-pricing/internal/checkout"
	"github.com/noah-isme/fruitstore-pricing/internal/config"
	"github.com/noah-isme/fruitstore-pricing/internal/coupon"
	"github.com/noah-isme/fruitstore-pricing/internal/obs"
	"github.com/noah-isme/fruitstore-pricing/internal/rewards"
	"github.com/noah-isme/fruitstore-pricing/internal/rounding"
)

const serviceName = "fruitstore-pricing"

// Dependencies enumerates the shared services an embedding program needs to price carts.
type Dependencies struct {
	Config          *config.Config
	Logger          zerolog.Logger
	MetricsRegistry *prometheus.Registry
	TracerProvider  *sdktrace.TracerProvider
	Pricing         *checkout.Service
}

// New wires the pricing service from configuration.
func New(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("service", serviceName).Logger()

	policy, err := coupon.NewPolicy(coupon.PolicyOptions{
		CapUnit:   cfg.CouponCapUnit,
		Overrides: cfg.CouponOverrides,
	})
	if err != nil {
		return nil, err
	}
	roundingPolicy, err := rounding.NewPolicy(cfg.CardBonusMultiplier)
	if err != nil {
		return nil, err
	}

	tp, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName:   serviceName,
		Endpoint:      cfg.TracingEndpoint,
		Exporter:      cfg.TracingExporter,
		SamplingRatio: cfg.TracingSamplingRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	svc := &checkout.Service{
		Coupons:  policy,
		Rounding: roundingPolicy,
		Rewards: &rewards.Calculator{
			BagWeightKg:     cfg.GiftBagWeightKg,
			CouponThreshold: cfg.GiftCouponThreshold,
			Allowed:         coupon.AllowedCodes,
			Selector:        rewards.Rotation{Start: cfg.GiftCouponStart},
		},
		Logger:  logger,
		Metrics: obs.NewPricingMetrics(cfg.MetricsNamespace, cfg.MetricsBuckets, registry),
		Tracer:  tp.Tracer(serviceName),
	}

	logger.Info().
		Str("env", cfg.AppEnv).
		Str("card_bonus_multiplier", cfg.CardBonusMultiplier.String()).
		Int("coupon_overrides", len(cfg.CouponOverrides)).
		Msg("pricing_ready")

	return &Dependencies{
		Config:          cfg,
		Logger:          logger,
		MetricsRegistry: registry,
		TracerProvider:  tp,
		Pricing:         svc,
	}, nil
}

// Shutdown flushes telemetry.
func (d *Dependencies) Shutdown(ctx context.Context) error {
	if d == nil || d.TracerProvider == nil {
		return nil
	}
	return d.TracerProvider.Shutdown(ctx)
}
