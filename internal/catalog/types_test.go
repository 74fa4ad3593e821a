package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fruitstore-pricing/internal/common"
)

func TestParseProduct(t *testing.T) {
	p, err := ParseProduct(" apple ")
	require.NoError(t, err)
	require.Equal(t, Apple, p)

	_, err = ParseProduct("cherry")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("card")
	require.NoError(t, err)
	require.Equal(t, Card, m)

	_, err = ParsePaymentMethod("cheque")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestScopeProduct(t *testing.T) {
	p, ok := ScopeApple.Product()
	require.True(t, ok)
	require.Equal(t, Apple, p)

	p, ok = ScopeBanana.Product()
	require.True(t, ok)
	require.Equal(t, Banana, p)

	_, ok = ScopeCart.Product()
	require.False(t, ok)
	require.True(t, ScopeCart.Valid())
	require.False(t, Scope("Q").Valid())
}
