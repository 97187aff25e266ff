package order

import (
	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/model"
)

// forward is the canonical chain; cancelled is deliberately absent
var forward = []model.OrderStatus{
	model.StatusNew,
	model.StatusApproved,
	model.StatusInProduction,
	model.StatusPackaging,
	model.StatusReady,
	model.StatusOutForDelivery,
	model.StatusDelivered,
}

// NextStatus returns the successor of current in the forward chain.
// It reports false for delivered, cancelled and unknown statuses, and never returns cancelled.
func NextStatus(current model.OrderStatus) (model.OrderStatus, bool) {
	for i, s := range forward {
		if s == current && i+1 < len(forward) {
			return forward[i+1], true
		}
	}
	return "", false
}

// NextStatusFor is NextStatus adjusted for pickup orders, which are handed over
// at the counter and go from ready straight to delivered.
func NextStatusFor(o *model.Order) (model.OrderStatus, bool) {
	if o.DeliveryType == model.DeliveryPickup && o.Status == model.StatusReady {
		return model.StatusDelivered, true
	}
	return NextStatus(o.Status)
}

// ValidateTransition checks that o may move to status to
func ValidateTransition(o *model.Order, to model.OrderStatus) error {
	if !to.Valid() {
		return apperror.Invalid("unknown order status %q", to)
	}
	if o.Status.Terminal() {
		return errors.Wrapf(apperror.ErrInvalidTransition, "order %s is already %s", o.OrderNumber, o.Status)
	}
	if to == model.StatusCancelled {
		return nil
	}
	next, ok := NextStatusFor(o)
	if !ok || next != to {
		return errors.Wrapf(apperror.ErrInvalidTransition, "order %s cannot move from %s to %s", o.OrderNumber, o.Status, to)
	}
	if to == model.StatusOutForDelivery && o.DriverID == nil {
		return errors.Wrapf(apperror.ErrInvalidTransition, "order %s has no driver assigned", o.OrderNumber)
	}
	return nil
}

// transitionCapabilities lists the capabilities allowed to move an order into each
// status; holding any one of them is enough.
func transitionCapabilities(o *model.Order, to model.OrderStatus) []access.Capability {
	switch to {
	case model.StatusApproved:
		return []access.Capability{access.OrderApprove}
	case model.StatusInProduction, model.StatusPackaging, model.StatusReady:
		return []access.Capability{access.KitchenAdvance}
	case model.StatusOutForDelivery:
		return []access.Capability{access.DeliveryDispatch}
	case model.StatusDelivered:
		if o.DeliveryType == model.DeliveryPickup {
			return []access.Capability{access.DeliveryDispatch, access.KitchenAdvance, access.OrderApprove}
		}
		return []access.Capability{access.DeliveryDispatch}
	case model.StatusCancelled:
		return []access.Capability{access.OrderCancel}
	}
	return nil
}

func requireTransition(actor access.Actor, o *model.Order, to model.OrderStatus) error {
	caps := transitionCapabilities(o, to)
	for _, c := range caps {
		if actor.Can(c) {
			return nil
		}
	}
	return errors.Wrapf(apperror.ErrForbidden, "role %q may not move orders to %s", actor.Role, to)
}
