package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/cart"
	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
)

// Line describes one priced cart item.
type Line struct {
	Product  catalog.Product
	Quantity decimal.Decimal
	Gross    decimal.Decimal
	Fraction decimal.Decimal
	Net      decimal.Decimal
}

// Summary aggregates computed pricing components before coupons.
type Summary struct {
	Lines    []Line
	Subtotal decimal.Decimal
}

// Compute prices every cart line against the period and applies the tier
// discount once per line, flat over the whole line quantity.
func Compute(c cart.Cart, period *Period) (Summary, error) {
	items := c.Items()
	summary := Summary{Lines: make([]Line, 0, len(items)), Subtotal: decimal.Zero}
	one := decimal.NewFromInt(1)
	for i, it := range items {
		unit, err := period.UnitPrice(it.Product)
		if err != nil {
			return Summary{}, fmt.Errorf("price line %d: %w", i, err)
		}
		gross := it.Quantity.Mul(unit)
		fraction := period.DiscountFraction(it.Product, it.Quantity)
		net := gross.Mul(one.Sub(fraction))
		summary.Lines = append(summary.Lines, Line{
			Product:  it.Product,
			Quantity: it.Quantity,
			Gross:    gross,
			Fraction: fraction,
			Net:      net,
		})
		summary.Subtotal = summary.Subtotal.Add(net)
	}
	return summary, nil
}
