package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is a B2B account buying on credit
type Client struct {
	ID                  string          `json:"id" gorm:"type:varchar(64);primaryKey"`
	CompanyName         string          `json:"company_name" gorm:"type:varchar(255);not null;index"`
	CommercialRegNumber string          `json:"commercial_reg_number" gorm:"type:varchar(64)"`
	ContactPerson       string          `json:"contact_person" gorm:"type:varchar(100)"`
	Phone               string          `json:"phone" gorm:"type:varchar(32)"`
	Email               string          `json:"email" gorm:"type:varchar(100)"`
	CreditLimit         decimal.Decimal `json:"credit_limit" gorm:"type:numeric(14,2);not null"`
	PaymentTerms        PaymentTerms    `json:"payment_terms" gorm:"not null"`
	AccountStatus       AccountStatus   `json:"account_status" gorm:"type:varchar(16);not null;default:'active'"`
	Notes               string          `json:"notes" gorm:"type:text"`
	OutstandingBalance  decimal.Decimal `json:"outstanding_balance" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Suspended reports whether the account is barred from new orders
func (c *Client) Suspended() bool {
	return c.AccountStatus == AccountSuspended
}
