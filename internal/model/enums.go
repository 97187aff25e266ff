package model

// UnitType is how a product is sold
type UnitType string

const (
	UnitPiece  UnitType = "piece"
	UnitTray   UnitType = "tray"
	UnitCarton UnitType = "carton"
)

// Valid reports whether u is a known unit type
func (u UnitType) Valid() bool {
	switch u {
	case UnitPiece, UnitTray, UnitCarton:
		return true
	}
	return false
}

// AccountStatus of a client account
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// Valid reports whether s is a known account status
func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountSuspended
}

// PaymentTerms in days
type PaymentTerms int

const (
	Terms7  PaymentTerms = 7
	Terms14 PaymentTerms = 14
	Terms30 PaymentTerms = 30
)

// Valid reports whether t is one of the offered payment terms
func (t PaymentTerms) Valid() bool {
	switch t {
	case Terms7, Terms14, Terms30:
		return true
	}
	return false
}

// DeliveryType of an order
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

// Valid reports whether d is a known delivery type
func (d DeliveryType) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

// OrderStatus is a state of the order lifecycle
type OrderStatus string

const (
	StatusNew            OrderStatus = "new"
	StatusApproved       OrderStatus = "approved"
	StatusInProduction   OrderStatus = "in_production"
	StatusPackaging      OrderStatus = "packaging"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusApproved, StatusInProduction, StatusPackaging,
		StatusReady, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentMethod used to settle a balance
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCheque   PaymentMethod = "cheque"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCheque:
		return true
	}
	return false
}

// MovementDirection of an inventory ledger entry
type MovementDirection string

const (
	MovementIn  MovementDirection = "in"
	MovementOut MovementDirection = "out"
)

// Valid reports whether d is a known direction
func (d MovementDirection) Valid() bool {
	return d == MovementIn || d == MovementOut
}
