package cart

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/catalog"
	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

// Item is a single cart line: a product and its weight in kilograms.
type Item struct {
	Product  catalog.Product
	Quantity decimal.Decimal
}

// NewItem builds an Item from a float kilogram amount.
func NewItem(product catalog.Product, kg float64) Item {
	return Item{Product: product, Quantity: decimal.NewFromFloat(kg)}
}

// Cart is an ordered, immutable list of items.
type Cart struct {
	items []Item
}

// New validates the items and returns a Cart holding a private copy of them.
func New(items ...Item) (Cart, error) {
	for i, it := range items {
		if !it.Product.Valid() {
			return Cart{}, common.Errorf(common.ErrInvalidInput, "item %d: unknown product %q", i, it.Product)
		}
		if it.Quantity.IsNegative() {
			return Cart{}, common.Errorf(common.ErrInvalidInput, "item %d: quantity must not be negative, got %s", i, it.Quantity)
		}
	}
	return Cart{items: append([]Item(nil), items...)}, nil
}

// MustNew behaves like New but panics on error. Useful for tests.
func MustNew(items ...Item) Cart {
	c, err := New(items...)
	if err != nil {
		panic(err)
	}
	return c
}

// Items returns a copy of the cart lines in insertion order.
func (c Cart) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Len reports the number of lines.
func (c Cart) Len() int {
	return len(c.items)
}

// TotalWeight is the physical weight of the cart in kilograms.
func (c Cart) TotalWeight() decimal.Decimal {
	return lo.Reduce(c.items, func(acc decimal.Decimal, it Item, _ int) decimal.Decimal {
		return acc.Add(it.Quantity)
	}, decimal.Zero)
}
