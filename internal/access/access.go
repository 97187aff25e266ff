// Package access maps actor roles to the capabilities checked at the service boundary.
package access

import (
	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
)

// Role of an authenticated actor
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleSalesAdmin Role = "sales_admin"
	RoleKitchen    Role = "kitchen"
	RoleDelivery   Role = "delivery"
	RoleFinance    Role = "finance"
	RoleClient     Role = "client"
	RoleDemoAdmin  Role = "demo_admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Capability is a single permitted action
type Capability string

const (
	CatalogView      Capability = "catalog.view"
	CatalogManage    Capability = "catalog.manage"
	ClientView       Capability = "client.view"
	ClientManage     Capability = "client.manage"
	PricingView      Capability = "pricing.view"
	PricingManage    Capability = "pricing.manage"
	PriceQuote       Capability = "pricing.quote"
	OrderView        Capability = "order.view"
	OrderCreate      Capability = "order.create"
	OrderApprove     Capability = "order.approve"
	OrderCancel      Capability = "order.cancel"
	KitchenAdvance   Capability = "kitchen.advance"
	DeliveryAssign   Capability = "delivery.assign"
	DeliveryDispatch Capability = "delivery.dispatch"
	DriverView       Capability = "driver.view"
	DriverManage     Capability = "driver.manage"
	FinanceView      Capability = "finance.view"
	PaymentRecord    Capability = "finance.payment.record"
	InventoryView    Capability = "inventory.view"
	InventoryRecord  Capability = "inventory.record"
	AuditView        Capability = "audit.view"
)

var allCapabilities = []Capability{
	CatalogView, CatalogManage, ClientView, ClientManage, PricingView, PricingManage, PriceQuote,
	OrderView, OrderCreate, OrderApprove, OrderCancel, KitchenAdvance,
	DeliveryAssign, DeliveryDispatch, DriverView, DriverManage,
	FinanceView, PaymentRecord, InventoryView, InventoryRecord, AuditView,
}

var roleCapabilities = map[Role][]Capability{
	RoleSuperAdmin: allCapabilities,
	RoleDemoAdmin:  allCapabilities,
	RoleSalesAdmin: {
		CatalogView, CatalogManage, ClientView, ClientManage, PricingView, PricingManage, PriceQuote,
		OrderView, OrderCreate, OrderApprove, OrderCancel, DriverView, InventoryView, FinanceView,
	},
	RoleKitchen: {
		CatalogView, OrderView, KitchenAdvance, InventoryView, InventoryRecord,
	},
	RoleDelivery: {
		OrderView, DeliveryAssign, DeliveryDispatch, DriverView,
	},
	RoleFinance: {
		ClientView, PricingView, OrderView, FinanceView, PaymentRecord, AuditView,
	},
	RoleClient: {
		CatalogView, PriceQuote, OrderView, OrderCreate,
	},
}

var capabilitySets = buildSets()

func buildSets() map[Role]map[Capability]struct{} {
	sets := make(map[Role]map[Capability]struct{}, len(roleCapabilities))
	for role, caps := range roleCapabilities {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID string
	Role   Role
	// ClientID scopes a client portal user to their own account
	ClientID string
}

// System is the actor used by internal jobs and the operator CLI
var System = Actor{UserID: "system", Role: RoleSuperAdmin}

// Can reports whether the actor holds capability c
func (a Actor) Can(c Capability) bool {
	_, ok := capabilitySets[a.Role][c]
	return ok
}

// Require returns ErrForbidden unless the actor holds capability c
func (a Actor) Require(c Capability) error {
	if !a.Can(c) {
		return errors.Wrapf(apperror.ErrForbidden, "role %q lacks %s", a.Role, c)
	}
	return nil
}

// ScopedToClient reports whether the actor may only see one client's data
func (a Actor) ScopedToClient() bool {
	return a.Role == RoleClient
}

// RequireClient returns ErrForbidden when a client-scoped actor touches another client
func (a Actor) RequireClient(clientID string) error {
	if a.ScopedToClient() && a.ClientID != clientID {
		return errors.Wrapf(apperror.ErrForbidden, "client user may not access client %q", clientID)
	}
	return nil
}

// Capabilities lists the capabilities of a role
func Capabilities(r Role) []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
