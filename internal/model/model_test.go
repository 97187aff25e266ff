package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestPricingTierContains(t *testing.T) {
	bounded := PricingTier{MinQty: 11, MaxQty: intPtr(30)}
	assert.False(t, bounded.Contains(10))
	assert.True(t, bounded.Contains(11))
	assert.True(t, bounded.Contains(30))
	assert.False(t, bounded.Contains(31))

	open := PricingTier{MinQty: 31}
	assert.True(t, open.Contains(31))
	assert.True(t, open.Contains(100000))
	assert.False(t, open.Contains(30))
}

func TestPricingKind(t *testing.T) {
	price := decimal.NewFromInt(88)
	assert.Equal(t, PricingFixed, (&ClientProductPricing{FixedPrice: &price}).Kind())
	assert.Equal(t, PricingTiered, (&ClientProductPricing{Tiers: []PricingTier{{MinQty: 1}}}).Kind())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, UnitTray.Valid())
	assert.False(t, UnitType("box").Valid())
	assert.True(t, Terms14.Valid())
	assert.False(t, PaymentTerms(10).Valid())
	assert.True(t, PaymentCheque.Valid())
	assert.False(t, PaymentMethod("card").Valid())
	assert.False(t, OrderStatus("pending_review").Valid())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.False(t, StatusReady.Terminal())
}
