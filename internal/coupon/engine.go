package coupon

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
	"github.com/noah-isme/fruitstore-pricing/internal/pricing"
)

// LineValue is the current value attributable to one product across the cart.
type LineValue struct {
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// State is the running total threaded through the coupon fold.
type State struct {
	Total decimal.Decimal
	lines map[catalog.Product]LineValue
}

// NewState seeds the fold from the discounted cart summary. Lines of the same
// product are merged.
func NewState(summary pricing.Summary) *State {
	s := &State{Total: summary.Subtotal, lines: make(map[catalog.Product]LineValue)}
	for _, l := range summary.Lines {
		cur := s.lines[l.Product]
		s.lines[l.Product] = LineValue{
			Quantity: cur.Quantity.Add(l.Quantity),
			Value:    cur.Value.Add(l.Net),
		}
	}
	return s
}

// Line returns the current value of a product line.
func (s *State) Line(p catalog.Product) (LineValue, bool) {
	l, ok := s.lines[p]
	return l, ok
}

// Application records the effect of one coupon.
type Application struct {
	Code   string
	Family Family
	Before decimal.Decimal
	After  decimal.Decimal
}

// Result is the outcome of folding coupons over a summary.
type Result struct {
	Total        decimal.Decimal
	Applications []Application
}

// Apply folds the coupons left to right. Every step is clamped so neither the
// total nor any product line goes below zero.
func Apply(summary pricing.Summary, coupons []Coupon) Result {
	s := NewState(summary)
	res := Result{Applications: make([]Application, 0, len(coupons))}
	for _, c := range coupons {
		before := s.Total
		s.apply(c)
		res.Applications = append(res.Applications, Application{
			Code:   c.Code(),
			Family: c.Family(),
			Before: before,
			After:  s.Total,
		})
	}
	res.Total = s.Total
	return res
}

// Apply resolves the codes against the policy and folds them. Nothing is
// applied when any code is unknown.
func (p *Policy) Apply(summary pricing.Summary, codes []string) (Result, error) {
	coupons, err := p.ParseAll(codes)
	if err != nil {
		return Result{}, err
	}
	return Apply(summary, coupons), nil
}

func (s *State) apply(c Coupon) {
	off, product := c.reduction(s)
	if off.IsNegative() {
		off = decimal.Zero
	}
	off = decimal.Min(off, s.Total)
	if product != nil {
		line := s.lines[*product]
		off = decimal.Min(off, line.Value)
		line.Value = line.Value.Sub(off)
		s.lines[*product] = line
	}
	s.Total = s.Total.Sub(off)
}
