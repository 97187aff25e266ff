package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment reduces a client's outstanding balance
type Payment struct {
	ID              string          `json:"id" gorm:"type:varchar(64);primaryKey"`
	ClientID        string          `json:"client_id" gorm:"type:varchar(64);not null;index"`
	ClientName      string          `json:"client_name" gorm:"type:varchar(255);not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Method          PaymentMethod   `json:"method" gorm:"type:varchar(16);not null"`
	ReferenceNumber string          `json:"reference_number" gorm:"type:varchar(64)"`
	Notes           string          `json:"notes" gorm:"type:text"`
	Date            string          `json:"date" gorm:"type:varchar(10);index"` // YYYY-MM-DD
	CreatedAt       time.Time       `json:"created_at"`

	Client *Client `json:"-" gorm:"foreignKey:ClientID"`
}

// InventoryMovement is an append-only stock ledger entry
type InventoryMovement struct {
	ID          string            `json:"id" gorm:"type:varchar(64);primaryKey"`
	ProductID   string            `json:"product_id" gorm:"type:varchar(64);not null;index"`
	ProductName string            `json:"product_name" gorm:"type:varchar(255);not null"`
	Direction   MovementDirection `json:"type" gorm:"type:varchar(8);not null"`
	Quantity    int               `json:"quantity" gorm:"not null"`
	Reason      string            `json:"reason" gorm:"type:text"`
	Date        string            `json:"date" gorm:"type:varchar(10);index"` // YYYY-MM-DD
	StockAfter  int               `json:"stock_after"`
	CreatedAt   time.Time         `json:"created_at"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}

// AuditLog records who changed what
type AuditLog struct {
	ID          string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	UserID      string    `json:"user_id" gorm:"type:varchar(64);index"`
	Action      string    `json:"action" gorm:"type:varchar(32);not null"`
	Entity      string    `json:"table_name" gorm:"column:table_name;type:varchar(64);not null"`
	RecordID    string    `json:"record_id" gorm:"type:varchar(64);not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// AllModels lists every persisted type, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Product{},
		&Client{},
		&Driver{},
		&ClientProductPricing{},
		&PricingTier{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&InventoryMovement{},
		&AuditLog{},
	}
}
