package rounding

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

var (
	ten        = decimal.NewFromInt(10)
	five       = decimal.NewFromInt(5)
	lowerBound = decimal.RequireFromString("2.5")
	upperBound = decimal.RequireFromString("7.5")
)

// Rounder turns a payable amount into the amount actually charged.
type Rounder interface {
	Round(amount decimal.Decimal) decimal.Decimal
}

// Cash rounds to a multiple of 5 based on the remainder modulo 10: below 2.5
// rounds down, below 7.5 lands on the 5, anything else rounds up.
type Cash struct{}

// Round implements Rounder.
func (Cash) Round(amount decimal.Decimal) decimal.Decimal {
	remainder := amount.Mod(ten)
	base := amount.Sub(remainder)
	switch {
	case remainder.LessThan(lowerBound):
		return base
	case remainder.LessThan(upperBound):
		return base.Add(five)
	default:
		return base.Add(ten)
	}
}

// Card applies BonusMultiplier and rounds half away from zero to a tenth.
type Card struct {
	BonusMultiplier decimal.Decimal
}

// DefaultCard grants no bonus.
func DefaultCard() Card {
	return Card{BonusMultiplier: decimal.NewFromInt(1)}
}

// Round implements Rounder.
func (c Card) Round(amount decimal.Decimal) decimal.Decimal {
	multiplier := c.BonusMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	return amount.Mul(multiplier).Round(1)
}

// Policy selects a Rounder per payment method.
type Policy struct {
	Cash Rounder
	Card Rounder
}

// DefaultPolicy is cash rounding to 5 and card rounding to a tenth without bonus.
func DefaultPolicy() Policy {
	return Policy{Cash: Cash{}, Card: DefaultCard()}
}

// NewPolicy validates the card bonus multiplier, which must lie in (0,1].
func NewPolicy(cardBonusMultiplier decimal.Decimal) (Policy, error) {
	if !cardBonusMultiplier.IsPositive() || cardBonusMultiplier.GreaterThan(decimal.NewFromInt(1)) {
		return Policy{}, common.Errorf(common.ErrInvalidConfiguration, "card bonus multiplier must be in (0,1], got %s", cardBonusMultiplier)
	}
	return Policy{Cash: Cash{}, Card: Card{BonusMultiplier: cardBonusMultiplier}}, nil
}

// Round rounds amount according to the payment method. Negative input is
// treated as zero.
func (p Policy) Round(method catalog.PaymentMethod, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	var r Rounder
	switch method {
	case catalog.Cash:
		r = p.Cash
	case catalog.Card:
		r = p.Card
	default:
		return decimal.Zero, common.Errorf(common.ErrInvalidInput, "unknown payment method %q", method)
	}
	if r == nil {
		return decimal.Zero, common.Errorf(common.ErrInvalidConfiguration, "no rounding configured for %s", method)
	}
	return r.Round(amount), nil
}
