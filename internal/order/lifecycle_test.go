package order

import (
	"testing"

	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from   model.OrderStatus
		want   model.OrderStatus
		wantOK bool
	}{
		{model.StatusNew, model.StatusApproved, true},
		{model.StatusApproved, model.StatusInProduction, true},
		{model.StatusInProduction, model.StatusPackaging, true},
		{model.StatusPackaging, model.StatusReady, true},
		{model.StatusReady, model.StatusOutForDelivery, true},
		{model.StatusOutForDelivery, model.StatusDelivered, true},
		{model.StatusDelivered, "", false},
		{model.StatusCancelled, "", false},
		{model.OrderStatus("lost"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := NextStatus(tt.from)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, model.StatusCancelled, got)
		})
	}
}

func TestNextStatusForPickup(t *testing.T) {
	pickup := &model.Order{DeliveryType: model.DeliveryPickup, Status: model.StatusReady}
	next, ok := NextStatusFor(pickup)
	assert.True(t, ok)
	assert.Equal(t, model.StatusDelivered, next)

	delivery := &model.Order{DeliveryType: model.DeliveryDelivery, Status: model.StatusReady}
	next, ok = NextStatusFor(delivery)
	assert.True(t, ok)
	assert.Equal(t, model.StatusOutForDelivery, next)
}

func TestValidateTransition(t *testing.T) {
	driver := "d1"
	tests := []struct {
		name    string
		order   model.Order
		to      model.OrderStatus
		wantErr error
	}{
		{"forward step", model.Order{Status: model.StatusNew}, model.StatusApproved, nil},
		{"skip ahead", model.Order{Status: model.StatusNew}, model.StatusReady, apperror.ErrInvalidTransition},
		{"backwards", model.Order{Status: model.StatusPackaging}, model.StatusInProduction, apperror.ErrInvalidTransition},
		{"cancel from new", model.Order{Status: model.StatusNew}, model.StatusCancelled, nil},
		{"cancel out for delivery", model.Order{Status: model.StatusOutForDelivery, DriverID: &driver}, model.StatusCancelled, nil},
		{"cancel delivered", model.Order{Status: model.StatusDelivered}, model.StatusCancelled, apperror.ErrInvalidTransition},
		{"reopen cancelled", model.Order{Status: model.StatusCancelled}, model.StatusNew, apperror.ErrInvalidTransition},
		{"dispatch without driver", model.Order{Status: model.StatusReady, DeliveryType: model.DeliveryDelivery}, model.StatusOutForDelivery, apperror.ErrInvalidTransition},
		{"dispatch with driver", model.Order{Status: model.StatusReady, DeliveryType: model.DeliveryDelivery, DriverID: &driver}, model.StatusOutForDelivery, nil},
		{"confirm delivery", model.Order{Status: model.StatusOutForDelivery, DeliveryType: model.DeliveryDelivery, DriverID: &driver}, model.StatusDelivered, nil},
		{"pickup handover", model.Order{Status: model.StatusReady, DeliveryType: model.DeliveryPickup}, model.StatusDelivered, nil},
		{"pickup dispatch", model.Order{Status: model.StatusReady, DeliveryType: model.DeliveryPickup, DriverID: &driver}, model.StatusOutForDelivery, apperror.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(&tt.order, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	err := ValidateTransition(&model.Order{Status: model.StatusNew}, model.OrderStatus("shipped"))
	assert.True(t, apperror.IsValidation(err))
}

func TestRequireTransition(t *testing.T) {
	delivery := &model.Order{DeliveryType: model.DeliveryDelivery}
	pickup := &model.Order{DeliveryType: model.DeliveryPickup}

	kitchen := access.Actor{Role: access.RoleKitchen}
	sales := access.Actor{Role: access.RoleSalesAdmin}
	driver := access.Actor{Role: access.RoleDelivery}

	assert.NoError(t, requireTransition(sales, delivery, model.StatusApproved))
	assert.ErrorIs(t, requireTransition(kitchen, delivery, model.StatusApproved), apperror.ErrForbidden)
	assert.NoError(t, requireTransition(kitchen, delivery, model.StatusPackaging))
	assert.ErrorIs(t, requireTransition(driver, delivery, model.StatusPackaging), apperror.ErrForbidden)
	assert.NoError(t, requireTransition(driver, delivery, model.StatusOutForDelivery))
	assert.ErrorIs(t, requireTransition(kitchen, delivery, model.StatusDelivered), apperror.ErrForbidden)
	assert.NoError(t, requireTransition(kitchen, pickup, model.StatusDelivered))
	assert.NoError(t, requireTransition(sales, delivery, model.StatusCancelled))
	assert.ErrorIs(t, requireTransition(driver, delivery, model.StatusCancelled), apperror.ErrForbidden)
}
