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
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClientInput carries the editable client fields. The outstanding balance is
// not among them: only orders and payments move it.
type ClientInput struct {
	CompanyName         string              `json:"company_name"`
	CommercialRegNumber string              `json:"commercial_reg_number"`
	ContactPerson       string              `json:"contact_person"`
	Phone               string              `json:"phone"`
	Email               string              `json:"email"`
	CreditLimit         decimal.Decimal     `json:"credit_limit"`
	PaymentTerms        model.PaymentTerms  `json:"payment_terms"`
	AccountStatus       model.AccountStatus `json:"account_status"`
	Notes               string              `json:"notes"`
}

func (in *ClientInput) validate() error {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.CompanyName == "" {
		return apperror.Invalid("company_name is required")
	}
	if !in.CreditLimit.IsPositive() {
		return apperror.Invalid("credit_limit must be positive")
	}
	if !in.PaymentTerms.Valid() {
		return apperror.Invalid("payment_terms must be 7, 14 or 30")
	}
	if in.AccountStatus == "" {
		in.AccountStatus = model.AccountActive
	}
	if !in.AccountStatus.Valid() {
		return apperror.Invalid("account_status must be active or suspended")
	}
	return nil
}

func (in *ClientInput) apply(c *model.Client) {
	c.CompanyName = in.CompanyName
	c.CommercialRegNumber = strings.TrimSpace(in.CommercialRegNumber)
	c.ContactPerson = strings.TrimSpace(in.ContactPerson)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Email = strings.TrimSpace(in.Email)
	c.CreditLimit = in.CreditLimit
	c.PaymentTerms = in.PaymentTerms
	c.AccountStatus = in.AccountStatus
	c.Notes = in.Notes
}

// CreateClient opens an account with a zero balance
func (s *Service) CreateClient(ctx context.Context, actor access.Actor, in ClientInput) (*model.Client, error) {
	if err := actor.Require(access.ClientManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &model.Client{ID: uuid.NewString(), OutstandingBalance: decimal.Zero}
	in.apply(c)
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Clients().Upsert(ctx, c); err != nil {
			return errors.Wrap(err, "save client")
		}
		return audit.Record(ctx, tx, actor, audit.ActionCreate, audit.EntityClient, c.ID,
			"created client %s with limit %s", c.CompanyName, c.CreditLimit.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Client created", zap.String("client_id", c.ID), zap.String("company", c.CompanyName))
	return c, nil
}

// UpdateClient changes contact details, limit, terms and status
func (s *Service) UpdateClient(ctx context.Context, actor access.Actor, id string, in ClientInput) (*model.Client, error) {
	if err := actor.Require(access.ClientManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var c *model.Client
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if c, err = tx.Clients().GetForUpdate(ctx, id); err != nil {
			return notFound(err, apperror.ErrClientNotFound, "client", id)
		}
		in.apply(c)
		if err := tx.Clients().Upsert(ctx, c); err != nil {
			return errors.Wrap(err, "save client")
		}
		return audit.Record(ctx, tx, actor, audit.ActionUpdate, audit.EntityClient, c.ID, "updated client %s", c.CompanyName)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetClientStatus suspends or reactivates an account
func (s *Service) SetClientStatus(ctx context.Context, actor access.Actor, id string, status model.AccountStatus) (*model.Client, error) {
	if err := actor.Require(access.ClientManage); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperror.Invalid("account_status must be active or suspended")
	}

	var c *model.Client
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if c, err = tx.Clients().GetForUpdate(ctx, id); err != nil {
			return notFound(err, apperror.ErrClientNotFound, "client", id)
		}
		if c.AccountStatus == status {
			return nil
		}
		from := c.AccountStatus
		c.AccountStatus = status
		if err := tx.Clients().Upsert(ctx, c); err != nil {
			return errors.Wrap(err, "save client")
		}
		return audit.Record(ctx, tx, actor, audit.ActionStatusChange, audit.EntityClient, c.ID,
			"%s: %s -> %s", c.CompanyName, from, status)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Client status changed", zap.String("client_id", c.ID), zap.String("status", string(c.AccountStatus)))
	return c, nil
}

// DeleteClient removes an account that never placed an order, along with its pricing rules
func (s *Service) DeleteClient(ctx context.Context, actor access.Actor, id string) error {
	if err := actor.Require(access.ClientManage); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		c, err := getClient(ctx, tx, id)
		if err != nil {
			return err
		}
		orders, err := tx.Orders().List(ctx, repository.OrderFilter{ClientID: id})
		if err != nil {
			return errors.Wrap(err, "list client orders")
		}
		if len(orders) > 0 {
			return apperror.Invalid("%s has %d orders; suspend the account instead", c.CompanyName, len(orders))
		}
		if !c.OutstandingBalance.IsZero() {
			return apperror.Invalid("%s still owes %s", c.CompanyName, c.OutstandingBalance.StringFixed(2))
		}
		if err := tx.Clients().Delete(ctx, id); err != nil {
			return errors.Wrap(err, "delete client")
		}
		return audit.Record(ctx, tx, actor, audit.ActionDelete, audit.EntityClient, id, "deleted client %s", c.CompanyName)
	})
}

// GetClient returns one account; client users may read their own
func (s *Service) GetClient(ctx context.Context, actor access.Actor, id string) (*model.Client, error) {
	if actor.ScopedToClient() {
		if err := actor.RequireClient(id); err != nil {
			return nil, err
		}
	} else if err := actor.Require(access.ClientView); err != nil {
		return nil, err
	}
	return getClient(ctx, s.store, id)
}

// ListClients lists every account
func (s *Service) ListClients(ctx context.Context, actor access.Actor) ([]model.Client, error) {
	if err := actor.Require(access.ClientView); err != nil {
		return nil, err
	}
	clients, err := s.store.Clients().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list clients")
	}
	return clients, nil
}
