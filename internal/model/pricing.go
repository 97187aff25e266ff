package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingKind distinguishes the two rule shapes
type PricingKind string

const (
	PricingFixed  PricingKind = "fixed"
	PricingTiered PricingKind = "tiered"
)

// ClientProductPricing is the contractual price of one product for one client.
// Exactly one of FixedPrice and Tiers is set; at most one rule exists per pair.
type ClientProductPricing struct {
	ID         string           `json:"id" gorm:"type:varchar(64);primaryKey"`
	ClientID   string           `json:"client_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_pricing_client_product"`
	ProductID  string           `json:"product_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_pricing_client_product"`
	FixedPrice *decimal.Decimal `json:"fixed_price,omitempty" gorm:"type:numeric(14,2)"`
	Tiers      []PricingTier    `json:"tiers,omitempty" gorm:"foreignKey:PricingID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	Client  *Client  `json:"-" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Product *Product `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the table aligned with the pricing terminology
func (ClientProductPricing) TableName() string {
	return "client_product_pricing"
}

// Kind returns the rule shape
func (p *ClientProductPricing) Kind() PricingKind {
	if p.FixedPrice != nil {
		return PricingFixed
	}
	return PricingTiered
}

// PricingTier is one quantity range of a tiered rule. MaxQty nil means open-ended.
type PricingTier struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	PricingID string          `json:"-" gorm:"type:varchar(64);not null;index"`
	Position  int             `json:"-" gorm:"not null"`
	MinQty    int             `json:"min_qty" gorm:"not null"`
	MaxQty    *int            `json:"max_qty"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null"`
}

// Contains reports whether qty falls inside the tier, bounds inclusive
func (t PricingTier) Contains(qty int) bool {
	return qty >= t.MinQty && (t.MaxQty == nil || qty <= *t.MaxQty)
}
