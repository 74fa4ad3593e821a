package coupon

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

// Family groups coupons by how they transform the running total.
type Family string

const (
	FamilyFlatDeduction Family = "flat_deduction"
	FamilyFreeQuantity  Family = "free_quantity"
	FamilyPercentage    Family = "percentage"
)

// AllowedCodes is the closed set of coupon codes the store issues and accepts.
var AllowedCodes = []string{
	"A10", "B10",
	"A-FREE1", "B-FREE1",
	"A5-MAX10", "B5-MAX10",
	"X5", "X10", "X5-MAX10",
	"A5-MAX15", "B5-MAX15",
	"KUPON-2000-ULTRAMAX",
	"A5", "B5",
}

// Coupon is one parsed coupon. The concrete types are FlatDeduction,
// FreeQuantity and PercentageOff.
type Coupon interface {
	Code() string
	Family() Family
	reduction(s *State) (decimal.Decimal, *catalog.Product)
}

// FlatDeduction subtracts a fixed amount from the running total.
type FlatDeduction struct {
	code   string
	Amount decimal.Decimal
}

// FreeQuantity waives up to CapKg kilograms of a product's line.
type FreeQuantity struct {
	code    string
	Product catalog.Product
	CapKg   decimal.Decimal
}

// PercentageOff takes Fraction off either a product line or the whole cart,
// optionally limited to Cap currency units.
type PercentageOff struct {
	code     string
	Scope    catalog.Scope
	Fraction decimal.Decimal
	Cap      *decimal.Decimal
}

func (c FlatDeduction) Code() string   { return c.code }
func (c FlatDeduction) Family() Family { return FamilyFlatDeduction }

func (c FreeQuantity) Code() string   { return c.code }
func (c FreeQuantity) Family() Family { return FamilyFreeQuantity }

func (c PercentageOff) Code() string   { return c.code }
func (c PercentageOff) Family() Family { return FamilyPercentage }

func (c FlatDeduction) reduction(s *State) (decimal.Decimal, *catalog.Product) {
	return c.Amount, nil
}

func (c FreeQuantity) reduction(s *State) (decimal.Decimal, *catalog.Product) {
	line, ok := s.lines[c.Product]
	if !ok || !line.Quantity.IsPositive() {
		return decimal.Zero, nil
	}
	freeKg := decimal.Min(c.CapKg, line.Quantity)
	p := c.Product
	return line.Value.Mul(freeKg).Div(line.Quantity), &p
}

func (c PercentageOff) reduction(s *State) (decimal.Decimal, *catalog.Product) {
	base := s.Total
	var scoped *catalog.Product
	if p, ok := c.Scope.Product(); ok {
		line, found := s.lines[p]
		if !found {
			return decimal.Zero, nil
		}
		base = line.Value
		scoped = &p
	}
	off := base.Mul(c.Fraction)
	if c.Cap != nil {
		off = decimal.Min(off, *c.Cap)
	}
	return off, scoped
}

var (
	flatPattern    = regexp.MustCompile(`^KUPON-(\d+)-ULTRAMAX$`)
	freePattern    = regexp.MustCompile(`^([A-Z])-FREE(\d+)$`)
	percentPattern = regexp.MustCompile(`^([A-Z])(\d+)(?:-MAX(\d+))?$`)
)

// parseShape derives a coupon from the structure of its code. capUnit is the
// currency value of one MAX unit.
func parseShape(code string, capUnit decimal.Decimal) (Coupon, error) {
	if m := flatPattern.FindStringSubmatch(code); m != nil {
		amount, err := decimal.NewFromString(m[1])
		if err != nil {
			return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q: %v", code, err)
		}
		return FlatDeduction{code: code, Amount: amount}, nil
	}
	if m := freePattern.FindStringSubmatch(code); m != nil {
		product, ok := catalog.Scope(m[1]).Product()
		if !ok {
			return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q: free quantity needs a product scope", code)
		}
		capKg, err := decimal.NewFromString(m[2])
		if err != nil {
			return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q: %v", code, err)
		}
		return FreeQuantity{code: code, Product: product, CapKg: capKg}, nil
	}
	if m := percentPattern.FindStringSubmatch(code); m != nil {
		scope := catalog.Scope(m[1])
		if !scope.Valid() {
			return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q: unknown scope %q", code, m[1])
		}
		pct, err := strconv.Atoi(m[2])
		if err != nil || pct <= 0 || pct >= 100 {
			return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q: percentage out of range", code)
		}
		c := PercentageOff{code: code, Scope: scope, Fraction: decimal.New(int64(pct), -2)}
		if m[3] != "" {
			units, err := decimal.NewFromString(m[3])
			if err != nil {
				return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q: %v", code, err)
			}
			limit := units.Mul(capUnit)
			c.Cap = &limit
		}
		return c, nil
	}
	return nil, common.Errorf(common.ErrUnknownCouponCode, "coupon %q is not recognised", code)
}
