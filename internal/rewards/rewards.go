package rewards

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/common"
	"github.com/noah-isme/fruitstore-pricing/internal/coupon"
)

var (
	// DefaultBagWeightKg is the physical weight that earns one gift bag.
	DefaultBagWeightKg = decimal.NewFromInt(5)
	// DefaultCouponThreshold is the payable amount that earns one gift coupon.
	DefaultCouponThreshold = decimal.NewFromInt(20000)
	// MaxRewardCount bounds either reward count for a single quote.
	MaxRewardCount = decimal.NewFromInt(1_000_000)
)

// Selector chooses which gift coupon codes to issue.
type Selector interface {
	Select(allowed []string, n int) []string
}

// Rotation hands out allowed codes in order, starting at Start and wrapping
// around. The same inputs always produce the same codes.
type Rotation struct {
	Start int
}

// Select implements Selector.
func (r Rotation) Select(allowed []string, n int) []string {
	out := make([]string, 0, n)
	if len(allowed) == 0 {
		return out
	}
	start := r.Start % len(allowed)
	if start < 0 {
		start += len(allowed)
	}
	for i := 0; i < n; i++ {
		out = append(out, allowed[(start+i)%len(allowed)])
	}
	return out
}

// Calculator derives loyalty rewards from a priced cart.
type Calculator struct {
	BagWeightKg     decimal.Decimal
	CouponThreshold decimal.Decimal
	Allowed         []string
	Selector        Selector
}

// Rewards is the loyalty outcome of one quote.
type Rewards struct {
	GiftBags    int
	GiftCoupons []string
}

// NewCalculator returns a Calculator with the store defaults.
func NewCalculator() *Calculator {
	return &Calculator{
		BagWeightKg:     DefaultBagWeightKg,
		CouponThreshold: DefaultCouponThreshold,
		Allowed:         coupon.AllowedCodes,
		Selector:        Rotation{},
	}
}

// GiftBags is floor(weight / bag weight).
func (c *Calculator) GiftBags(physicalWeightKg decimal.Decimal) (int, error) {
	n, err := wholeUnits(physicalWeightKg, c.bagWeight())
	if err != nil {
		return 0, common.Errorf(common.ErrInvalidInput, "gift bags for %s kg: %v", physicalWeightKg, err)
	}
	return n, nil
}

// GiftCoupons issues floor(amount / threshold) codes, each a member of the
// allowed set.
func (c *Calculator) GiftCoupons(finalAmount decimal.Decimal) ([]string, error) {
	n, err := wholeUnits(finalAmount, c.couponThreshold())
	if err != nil {
		return nil, common.Errorf(common.ErrInvalidInput, "gift coupons for %s: %v", finalAmount, err)
	}
	if n == 0 {
		return []string{}, nil
	}
	allowed := c.allowed()
	selector := c.Selector
	if selector == nil {
		selector = Rotation{}
	}
	codes := selector.Select(allowed, n)
	if len(codes) != n {
		return nil, common.Errorf(common.ErrInvalidConfiguration, "gift coupon selector returned %d codes, want %d", len(codes), n)
	}
	if stray, ok := lo.Find(codes, func(code string) bool { return !lo.Contains(allowed, code) }); ok {
		return nil, common.Errorf(common.ErrInvalidConfiguration, "gift coupon %q is outside the allowed set", stray)
	}
	return codes, nil
}

// Compute derives both rewards.
func (c *Calculator) Compute(physicalWeightKg, finalAmount decimal.Decimal) (Rewards, error) {
	bags, err := c.GiftBags(physicalWeightKg)
	if err != nil {
		return Rewards{}, err
	}
	codes, err := c.GiftCoupons(finalAmount)
	if err != nil {
		return Rewards{}, err
	}
	return Rewards{GiftBags: bags, GiftCoupons: codes}, nil
}

// wholeUnits is floor(value / unit) computed without rounding the quotient.
// Non-positive values earn nothing.
func wholeUnits(value, unit decimal.Decimal) (int, error) {
	if !value.IsPositive() {
		return 0, nil
	}
	q, _ := value.QuoRem(unit, 0)
	if q.GreaterThan(MaxRewardCount) {
		return 0, fmt.Errorf("count %s exceeds %s", q, MaxRewardCount)
	}
	return int(q.IntPart()), nil
}

func (c *Calculator) bagWeight() decimal.Decimal {
	if c.BagWeightKg.IsPositive() {
		return c.BagWeightKg
	}
	return DefaultBagWeightKg
}

func (c *Calculator) couponThreshold() decimal.Decimal {
	if c.CouponThreshold.IsPositive() {
		return c.CouponThreshold
	}
	return DefaultCouponThreshold
}

func (c *Calculator) allowed() []string {
	if len(c.Allowed) > 0 {
		return c.Allowed
	}
	return coupon.AllowedCodes
}
