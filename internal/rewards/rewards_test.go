package rewards

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fruitstore-pricing/internal/common"
	"github.com/noah-isme/fruitstore-pricing/internal/coupon"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

type fixedSelector []string

func (f fixedSelector) Select(allowed []string, n int) []string { return f }

func TestGiftBags(t *testing.T) {
	c := NewCalculator()
	cases := map[float64]int{0: 0, 4.99: 0, 5: 1, 10.3: 2, 15: 3, 123.4: 24}
	for weight, want := range cases {
		bags, err := c.GiftBags(d(weight))
		require.NoError(t, err)
		require.Equal(t, want, bags, "weight %v", weight)
	}
}

func TestGiftBagsJustBelowWholeBag(t *testing.T) {
	weight := d(4.7).Add(decimal.NewFromFloat(0.29999999999999993))
	require.True(t, weight.LessThan(d(5)))

	bags, err := NewCalculator().GiftBags(weight)
	require.NoError(t, err)
	require.Equal(t, 0, bags)

	bags, err = NewCalculator().GiftBags(weight.Add(weight))
	require.NoError(t, err)
	require.Equal(t, 1, bags)
}

func TestGiftCouponsJustBelowThreshold(t *testing.T) {
	amount := decimal.RequireFromString("39999.99999999999999999")
	codes, err := NewCalculator().GiftCoupons(amount)
	require.NoError(t, err)
	require.Len(t, codes, 1)
}

func TestRewardCountsAreBounded(t *testing.T) {
	c := NewCalculator()
	huge := decimal.RequireFromString("1e30")

	_, err := c.GiftBags(huge)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = c.GiftCoupons(huge)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = c.Compute(d(10), huge)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGiftCouponCount(t *testing.T) {
	c := NewCalculator()
	cases := map[float64]int{0: 0, 19999.9: 0, 20000: 1, 20305: 1, 50600: 2, 105250: 5}
	for amount, want := range cases {
		codes, err := c.GiftCoupons(d(amount))
		require.NoError(t, err)
		require.Len(t, codes, want, "amount %v", amount)
		for _, code := range codes {
			require.Contains(t, coupon.AllowedCodes, code)
		}
	}
}

func TestGiftCouponsEmptyNotNil(t *testing.T) {
	codes, err := NewCalculator().GiftCoupons(decimal.Zero)
	require.NoError(t, err)
	require.NotNil(t, codes)
	require.Empty(t, codes)
}

func TestRotationWrapsAround(t *testing.T) {
	allowed := []string{"A", "B", "C"}
	require.Equal(t, []string{"B", "C", "A", "B"}, Rotation{Start: 1}.Select(allowed, 4))
	require.Equal(t, []string{"C"}, Rotation{Start: -1}.Select(allowed, 1))
	require.Empty(t, Rotation{}.Select(nil, 2))
}

func TestRotationIsDeterministic(t *testing.T) {
	c := NewCalculator()
	first, err := c.GiftCoupons(d(60000))
	require.NoError(t, err)
	second, err := c.GiftCoupons(d(60000))
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, []string{"A10", "B10", "A-FREE1"}, first)
}

func TestSelectorOutputIsValidated(t *testing.T) {
	c := NewCalculator()
	c.Selector = fixedSelector{"FREE-BEER"}
	_, err := c.GiftCoupons(d(20000))
	require.ErrorIs(t, err, common.ErrInvalidConfiguration)

	c.Selector = fixedSelector{}
	_, err = c.GiftCoupons(d(20000))
	require.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestComputeCustomThresholds(t *testing.T) {
	c := &Calculator{BagWeightKg: d(2), CouponThreshold: d(1000)}
	r, err := c.Compute(d(7), d(3500))
	require.NoError(t, err)
	require.Equal(t, 3, r.GiftBags)
	require.Len(t, r.GiftCoupons, 3)
}
