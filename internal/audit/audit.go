// Package audit appends and lists audit trail entries.
package audit

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
)

// Actions written to the trail
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionStatusChange = "status_change"
	ActionAssign       = "assign_driver"
	ActionPayment      = "payment"
	ActionMovement     = "stock_movement"
)

// Entity names match the table names
const (
	EntityProduct  = "products"
	EntityClient   = "clients"
	EntityPricing  = "client_product_pricing"
	EntityOrder    = "orders"
	EntityDriver   = "drivers"
	EntityPayment  = "payments"
	EntityMovement = "inventory_movements"
)

// Record appends one entry through tx, so it commits with the change it describes
func Record(ctx context.Context, tx repository.Store, actor access.Actor, action, entity, recordID, format string, args ...interface{}) error {
	entry := &model.AuditLog{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		Action:      action,
		Entity:      entity,
		RecordID:    recordID,
		Description: fmt.Sprintf(format, args...),
	}
	if err := tx.Audit().Append(ctx, entry); err != nil {
		return errors.Wrapf(err, "record %s on %s %s", action, entity, recordID)
	}
	return nil
}

const defaultLimit = 100

// Service exposes the trail to auditors
type Service struct {
	store repository.Store
}

// NewService creates the audit service
func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// List returns the most recent entries first. A non-positive limit uses the default.
func (s *Service) List(ctx context.Context, actor access.Actor, limit int) ([]model.AuditLog, error) {
	if err := actor.Require(access.AuditView); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	entries, err := s.store.Audit().List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list audit entries")
	}
	return entries, nil
}
