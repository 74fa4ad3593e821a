package coupon

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

// DefaultCapUnit is the currency value of one MAX unit, so MAX10 caps at 10000.
var DefaultCapUnit = decimal.NewFromInt(1000)

// Override replaces the derived parameters of a percentage coupon.
type Override struct {
	Percent decimal.Decimal
	Cap     *decimal.Decimal
}

// PolicyOptions configures which codes are accepted and how they are parameterised.
type PolicyOptions struct {
	Codes     []string
	CapUnit   decimal.Decimal
	Overrides map[string]Override
}

// Policy is the table of accepted coupons. It is immutable once built.
type Policy struct {
	coupons map[string]Coupon
	codes   []string
}

// NewPolicy parses every configured code once. A code whose shape is not
// understood makes the whole policy invalid.
func NewPolicy(opts PolicyOptions) (*Policy, error) {
	codes := opts.Codes
	if len(codes) == 0 {
		codes = AllowedCodes
	}
	capUnit := opts.CapUnit
	if !capUnit.IsPositive() {
		capUnit = DefaultCapUnit
	}
	p := &Policy{coupons: make(map[string]Coupon, len(codes)), codes: lo.Uniq(codes)}
	for _, code := range p.codes {
		c, err := parseShape(code, capUnit)
		if err != nil {
			return nil, common.Errorf(common.ErrInvalidConfiguration, "coupon policy entry %q: %v", code, err)
		}
		p.coupons[code] = c
	}
	for code, o := range opts.Overrides {
		c, ok := p.coupons[code]
		if !ok {
			return nil, common.Errorf(common.ErrInvalidConfiguration, "override for coupon %q which is not in the policy", code)
		}
		pct, ok := c.(PercentageOff)
		if !ok {
			return nil, common.Errorf(common.ErrInvalidConfiguration, "override for coupon %q: only percentage coupons are configurable", code)
		}
		if !o.Percent.IsPositive() || o.Percent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return nil, common.Errorf(common.ErrInvalidConfiguration, "override for coupon %q: percent must be in (0,100), got %s", code, o.Percent)
		}
		if o.Cap != nil && o.Cap.IsNegative() {
			return nil, common.Errorf(common.ErrInvalidConfiguration, "override for coupon %q: cap must not be negative", code)
		}
		pct.Fraction = o.Percent.Div(decimal.NewFromInt(100))
		pct.Cap = o.Cap
		p.coupons[code] = pct
	}
	return p, nil
}

// DefaultPolicy accepts exactly AllowedCodes with derived parameters.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(PolicyOptions{})
	if err != nil {
		panic(err)
	}
	return p
}

// Codes lists the accepted coupon codes in configuration order.
func (p *Policy) Codes() []string {
	return append([]string(nil), p.codes...)
}

// Lookup returns the parsed coupon for a code.
func (p *Policy) Lookup(code string) (Coupon, error) {
	c, ok := p.coupons[code]
	if !ok {
		return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q is not recognised", code)
	}
	return c, nil
}

// ParseAll resolves every code before anything is applied.
func (p *Policy) ParseAll(codes []string) ([]Coupon, error) {
	out := make([]Coupon, 0, len(codes))
	for i, code := range codes {
		c, err := p.Lookup(code)
		if err != nil {
			return nil, fmt.Errorf("coupon %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
