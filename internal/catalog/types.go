package catalog

import (
	"strings"

	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

// Product identifies a kind of weighed goods sold by the kilogram.
type Product string

const (
	Apple  Product = "APPLE"
	Banana Product = "BANANA"
)

// Products lists every known product in a stable order.
var Products = []Product{Apple, Banana}

// PaymentMethod selects rounding and bonus rules at checkout.
type PaymentMethod string

const (
	Cash PaymentMethod = "CASH"
	Card PaymentMethod = "CARD"
)

// Scope is the coupon code prefix naming what a coupon acts on.
type Scope string

const (
	ScopeApple  Scope = "A"
	ScopeBanana Scope = "B"
	// ScopeCart applies to the whole running total.
	ScopeCart Scope = "X"
)

var scopeProducts = map[Scope]Product{
	ScopeApple:  Apple,
	ScopeBanana: Banana,
}

// Valid reports whether p is a known product.
func (p Product) Valid() bool {
	for _, known := range Products {
		if p == known {
			return true
		}
	}
	return false
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == Cash || m == Card
}

// Product returns the product a scope is bound to. The cart scope has none.
func (s Scope) Product() (Product, bool) {
	p, ok := scopeProducts[s]
	return p, ok
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	if s == ScopeCart {
		return true
	}
	_, ok := scopeProducts[s]
	return ok
}

// ParseProduct converts user input into a Product.
func ParseProduct(value string) (Product, error) {
	p := Product(strings.ToUpper(strings.TrimSpace(value)))
	if !p.Valid() {
		return "", common.Errorf(common.ErrInvalidInput, "unknown product %q", value)
	}
	return p, nil
}

// ParsePaymentMethod converts user input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(value)))
	if !m.Valid() {
		return "", common.Errorf(common.ErrInvalidInput, "unknown payment method %q", value)
	}
	return m, nil
}
