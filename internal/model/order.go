package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a client purchase moving through the kitchen and delivery workflow.
// ClientName and the item snapshots are frozen at creation; TotalAmount is never recomputed.
type Order struct {
	ID            string          `json:"id" gorm:"type:varchar(64);primaryKey"`
	OrderNumber   string          `json:"order_number" gorm:"type:varchar(32);uniqueIndex;not null"`
	ClientID      string          `json:"client_id" gorm:"type:varchar(64);not null;index"`
	ClientName    string          `json:"client_name" gorm:"type:varchar(255);not null"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryType  DeliveryType    `json:"delivery_type" gorm:"type:varchar(16);not null"`
	RequestedDate string          `json:"requested_date" gorm:"type:varchar(10)"` // YYYY-MM-DD
	RequestedTime string          `json:"requested_time" gorm:"type:varchar(5)"`  // HH:MM
	Notes         string          `json:"notes" gorm:"type:text"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(24);not null;index"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	DriverID      *string         `json:"driver_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Client *Client `json:"-" gorm:"foreignKey:ClientID"`
	Driver *Driver `json:"-" gorm:"foreignKey:DriverID"`
}

// OrderItem is one priced line of an order
type OrderItem struct {
	ID          uint            `json:"-" gorm:"primaryKey"`
	OrderID     string          `json:"-" gorm:"type:varchar(64);not null;index"`
	Position    int             `json:"-" gorm:"not null"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(64);not null;index"`
	ProductName string          `json:"product_name" gorm:"type:varchar(255);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(14,2);not null"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}

// Driver delivers orders
type Driver struct {
	ID          string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(32)"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
