package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/fruitstore-pricing/internal/cart"
	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
	"github.com/noah-isme/fruitstore-pricing/internal/common"
	"github.com/noah-isme/fruitstore-pricing/internal/coupon"
	"github.com/noah-isme/fruitstore-pricing/internal/obs"
	"github.com/noah-isme/fruitstore-pricing/internal/pricing"
	"github.com/noah-isme/fruitstore-pricing/internal/rewards"
	"github.com/noah-isme/fruitstore-pricing/internal/rounding"
)

const tracerName = "github.com/noah-isme/fruitstore-pricing/internal/checkout"

// PriceInfo is the result of one pricing query.
type PriceInfo struct {
	QuoteID      uuid.UUID
	Amount       decimal.Decimal
	GiftBagCount int
	GiftCoupons  []string
}

// Service prices carts. It holds no per-call state and may serve concurrent
// queries as long as the periods passed in are not mutated.
type Service struct {
	Coupons  *coupon.Policy
	Rounding rounding.Policy
	Rewards  *rewards.Calculator
	Logger   zerolog.Logger
	Metrics  *obs.PricingMetrics
	Tracer   trace.Tracer
	Now      func() time.Time
}

// NewService returns a Service with the store defaults and no telemetry sinks.
func NewService() *Service {
	return &Service{
		Coupons:  coupon.DefaultPolicy(),
		Rounding: rounding.DefaultPolicy(),
		Rewards:  rewards.NewCalculator(),
		Logger:   zerolog.Nop(),
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer(tracerName)
}

func (s *Service) coupons() *coupon.Policy {
	if s.Coupons != nil {
		return s.Coupons
	}
	return coupon.DefaultPolicy()
}

func (s *Service) rounding() rounding.Policy {
	if s.Rounding.Cash == nil && s.Rounding.Card == nil {
		return rounding.DefaultPolicy()
	}
	return s.Rounding
}

func (s *Service) rewards() *rewards.Calculator {
	if s.Rewards != nil {
		return s.Rewards
	}
	return rewards.NewCalculator()
}

// Price runs the pipeline: tier discounts, coupons in order, payment rounding,
// then rewards. The first failing step aborts the query.
func (s *Service) Price(ctx context.Context, c cart.Cart, period *pricing.Period, couponCodes []string, method catalog.PaymentMethod) (PriceInfo, error) {
	quoteID := uuid.New()
	start := s.now()
	_, span := s.tracer().Start(ctx, "pricing.quote", trace.WithAttributes(
		attribute.String("quote.id", quoteID.String()),
		attribute.String("payment.method", string(method)),
		attribute.Int("cart.lines", c.Len()),
		attribute.Int("coupon.count", len(couponCodes)),
	))
	defer span.End()

	info, applied, err := s.price(c, period, couponCodes, method)
	s.observe(method, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, common.Code(err))
		s.Logger.Warn().
			Err(err).
			Str("quote_id", quoteID.String()).
			Str("payment_method", string(method)).
			Str("code", common.Code(err)).
			Strs("coupons", couponCodes).
			Msg("pricing_quote_failed")
		return PriceInfo{}, err
	}
	info.QuoteID = quoteID

	if s.Metrics != nil {
		for _, a := range applied {
			s.Metrics.CouponsApplied.WithLabelValues(string(a.Family)).Inc()
		}
		s.Metrics.GiftBagsIssued.Add(float64(info.GiftBagCount))
		s.Metrics.GiftCouponsIssued.Add(float64(len(info.GiftCoupons)))
	}
	span.SetAttributes(
		attribute.String("quote.amount", info.Amount.String()),
		attribute.Int("quote.gift_bags", info.GiftBagCount),
		attribute.Int("quote.gift_coupons", len(info.GiftCoupons)),
	)
	s.Logger.Info().
		Str("quote_id", quoteID.String()).
		Str("period", period.Name()).
		Str("payment_method", string(method)).
		Int("lines", c.Len()).
		Strs("coupons", couponCodes).
		Str("amount", info.Amount.String()).
		Int("gift_bags", info.GiftBagCount).
		Strs("gift_coupons", info.GiftCoupons).
		Msg("pricing_quote")
	return info, nil
}

func (s *Service) price(c cart.Cart, period *pricing.Period, couponCodes []string, method catalog.PaymentMethod) (PriceInfo, []coupon.Application, error) {
	if period == nil {
		return PriceInfo{}, nil, common.Errorf(common.ErrInvalidConfiguration, "pricing period is required")
	}
	if !method.Valid() {
		return PriceInfo{}, nil, common.Errorf(common.ErrInvalidInput, "unknown payment method %q", method)
	}

	summary, err := pricing.Compute(c, period)
	if err != nil {
		return PriceInfo{}, nil, fmt.Errorf("compute discounts: %w", err)
	}
	result, err := s.coupons().Apply(summary, couponCodes)
	if err != nil {
		return PriceInfo{}, nil, fmt.Errorf("apply coupons: %w", err)
	}
	amount, err := s.rounding().Round(method, result.Total)
	if err != nil {
		return PriceInfo{}, nil, fmt.Errorf("round amount: %w", err)
	}
	reward, err := s.rewards().Compute(c.TotalWeight(), amount)
	if err != nil {
		return PriceInfo{}, nil, fmt.Errorf("compute rewards: %w", err)
	}
	return PriceInfo{
		Amount:       amount,
		GiftBagCount: reward.GiftBags,
		GiftCoupons:  reward.GiftCoupons,
	}, result.Applications, nil
}

func (s *Service) observe(method catalog.PaymentMethod, start time.Time, err error) {
	if s.Metrics == nil {
		return
	}
	result := lo.Ternary(err == nil, "ok", common.Code(err))
	if result == "" {
		result = "error"
	}
	s.Metrics.QuotesTotal.WithLabelValues(string(method), result).Inc()
	s.Metrics.QuoteDuration.WithLabelValues(string(method)).Observe(obs.DurationMillis(s.now().Sub(start)))
}
