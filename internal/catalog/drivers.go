package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
)

// DriverInput carries the editable driver fields
type DriverInput struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	IsAvailable *bool  `json:"is_available"`
}

func (in *DriverInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return apperror.Invalid("name is required")
	}
	return nil
}

// CreateDriver adds a driver, available unless stated otherwise
func (s *Service) CreateDriver(ctx context.Context, actor access.Actor, in DriverInput) (*model.Driver, error) {
	if err := actor.Require(access.DriverManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	d := &model.Driver{ID: uuid.NewString(), Name: in.Name, Phone: in.Phone, IsAvailable: true}
	if in.IsAvailable != nil {
		d.IsAvailable = *in.IsAvailable
	}
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Drivers().Upsert(ctx, d); err != nil {
			return errors.Wrap(err, "save driver")
		}
		return audit.Record(ctx, tx, actor, audit.ActionCreate, audit.EntityDriver, d.ID, "created driver %s", d.Name)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDriver changes name, phone and availability
func (s *Service) UpdateDriver(ctx context.Context, actor access.Actor, id string, in DriverInput) (*model.Driver, error) {
	if err := actor.Require(access.DriverManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var d *model.Driver
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if d, err = getDriver(ctx, tx, id); err != nil {
			return err
		}
		d.Name = in.Name
		d.Phone = in.Phone
		if in.IsAvailable != nil {
			d.IsAvailable = *in.IsAvailable
		}
		if err := tx.Drivers().Upsert(ctx, d); err != nil {
			return errors.Wrap(err, "save driver")
		}
		return audit.Record(ctx, tx, actor, audit.ActionUpdate, audit.EntityDriver, d.ID, "updated driver %s", d.Name)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDriver removes a driver who never took an order
func (s *Service) DeleteDriver(ctx context.Context, actor access.Actor, id string) error {
	if err := actor.Require(access.DriverManage); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		d, err := getDriver(ctx, tx, id)
		if err != nil {
			return err
		}
		orders, err := tx.Orders().List(ctx, repository.OrderFilter{})
		if err != nil {
			return errors.Wrap(err, "list orders")
		}
		for _, o := range orders {
			if o.DriverID != nil && *o.DriverID == id {
				return apperror.Invalid("%s is on order %s; mark the driver unavailable instead", d.Name, o.OrderNumber)
			}
		}
		if err := tx.Drivers().Delete(ctx, id); err != nil {
			return errors.Wrap(err, "delete driver")
		}
		return audit.Record(ctx, tx, actor, audit.ActionDelete, audit.EntityDriver, id, "deleted driver %s", d.Name)
	})
}

// GetDriver returns one driver
func (s *Service) GetDriver(ctx context.Context, actor access.Actor, id string) (*model.Driver, error) {
	if err := actor.Require(access.DriverView); err != nil {
		return nil, err
	}
	return getDriver(ctx, s.store, id)
}

// ListDrivers lists the roster
func (s *Service) ListDrivers(ctx context.Context, actor access.Actor) ([]model.Driver, error) {
	if err := actor.Require(access.DriverView); err != nil {
		return nil, err
	}
	drivers, err := s.store.Drivers().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list drivers")
	}
	return drivers, nil
}
