package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxStock bounds a product's stock count; it fits the integer column on every backend
const MaxStock = math.MaxInt32

// Product represents the catalog entry. Products are deactivated, never hard-deleted,
// because historical orders reference them.
type Product struct {
	ID               string          `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name             string          `json:"name" gorm:"type:varchar(255);not null"`
	Category         string          `json:"category" gorm:"type:varchar(100);index"`
	UnitType         UnitType        `json:"unit_type" gorm:"type:varchar(16);not null"`
	BasePrice        decimal.Decimal `json:"base_price" gorm:"type:numeric(14,2);not null"`
	CostPrice        decimal.Decimal `json:"cost_price" gorm:"type:numeric(14,2);not null"`
	PreparationTime  int             `json:"preparation_time"` // minutes
	ShelfLife        int             `json:"shelf_life"`       // days
	MinOrderQuantity int             `json:"min_order_quantity" gorm:"not null;default:1"`
	IsActive         bool            `json:"is_active" gorm:"default:true"`
	Stock            int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `json:"-" gorm:"index"`
}
