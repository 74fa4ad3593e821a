package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

// Tier grants Fraction off a whole line once its quantity reaches Threshold kilograms.
type Tier struct {
	Threshold decimal.Decimal
	Fraction  decimal.Decimal
}

// Period is a named, read-only pricing configuration. It is safe for concurrent
// reads once built.
type Period struct {
	name   string
	prices map[catalog.Product]decimal.Decimal
	tiers  map[catalog.Product][]Tier
}

// PeriodBuilder collects unit prices and discount tiers before a Period is frozen.
type PeriodBuilder struct {
	name   string
	prices map[catalog.Product]decimal.Decimal
	tiers  map[catalog.Product][]Tier
	errs   []error
}

// NewPeriodBuilder starts a period configuration.
func NewPeriodBuilder(name string) *PeriodBuilder {
	return &PeriodBuilder{
		name:   name,
		prices: make(map[catalog.Product]decimal.Decimal),
		tiers:  make(map[catalog.Product][]Tier),
	}
}

// SetUnitPrice registers or overwrites the per-kilogram price of a product.
func (b *PeriodBuilder) SetUnitPrice(p catalog.Product, price decimal.Decimal) *PeriodBuilder {
	switch {
	case !p.Valid():
		b.errs = append(b.errs, common.Errorf(common.ErrInvalidConfiguration, "unit price for unknown product %q", p))
	case price.IsNegative():
		b.errs = append(b.errs, common.Errorf(common.ErrInvalidConfiguration, "unit price for %s must not be negative, got %s", p, price))
	default:
		b.prices[p] = price
	}
	return b
}

// SetDiscount registers a discount tier. Thresholds for one product must be
// registered in strictly increasing order and fractions must lie in [0,1).
func (b *PeriodBuilder) SetDiscount(p catalog.Product, thresholdKg, fraction decimal.Decimal) *PeriodBuilder {
	if !p.Valid() {
		b.errs = append(b.errs, common.Errorf(common.ErrInvalidConfiguration, "discount for unknown product %q", p))
		return b
	}
	if thresholdKg.IsNegative() {
		b.errs = append(b.errs, common.Errorf(common.ErrInvalidConfiguration, "discount threshold for %s must not be negative, got %s", p, thresholdKg))
		return b
	}
	if fraction.IsNegative() || fraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		b.errs = append(b.errs, common.Errorf(common.ErrInvalidConfiguration, "discount fraction for %s must be in [0,1), got %s", p, fraction))
		return b
	}
	tiers := b.tiers[p]
	if n := len(tiers); n > 0 && !thresholdKg.GreaterThan(tiers[n-1].Threshold) {
		b.errs = append(b.errs, common.Errorf(common.ErrInvalidConfiguration,
			"discount thresholds for %s must be strictly increasing: %s after %s", p, thresholdKg, tiers[n-1].Threshold))
		return b
	}
	b.tiers[p] = append(tiers, Tier{Threshold: thresholdKg, Fraction: fraction})
	return b
}

// Build validates the collected configuration and returns an immutable Period.
func (b *PeriodBuilder) Build() (*Period, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	period := &Period{
		name:   b.name,
		prices: make(map[catalog.Product]decimal.Decimal, len(b.prices)),
		tiers:  make(map[catalog.Product][]Tier, len(b.tiers)),
	}
	for p, price := range b.prices {
		period.prices[p] = price
	}
	for p, tiers := range b.tiers {
		period.tiers[p] = append([]Tier(nil), tiers...)
	}
	return period, nil
}

// MustBuild behaves like Build but panics on error.
func (b *PeriodBuilder) MustBuild() *Period {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the period label.
func (p *Period) Name() string {
	return p.name
}

// UnitPrice returns the per-kilogram price of a product.
func (p *Period) UnitPrice(product catalog.Product) (decimal.Decimal, error) {
	price, ok := p.prices[product]
	if !ok {
		return decimal.Zero, common.Errorf(common.ErrUnconfiguredProduct, "no unit price for %s in period %q", product, p.name)
	}
	return price, nil
}

// DiscountFraction returns the fraction of the highest tier whose threshold does
// not exceed quantityKg, or zero when no tier qualifies.
func (p *Period) DiscountFraction(product catalog.Product, quantityKg decimal.Decimal) decimal.Decimal {
	fraction := decimal.Zero
	for _, tier := range p.tiers[product] {
		if quantityKg.LessThan(tier.Threshold) {
			break
		}
		fraction = tier.Fraction
	}
	return fraction
}
