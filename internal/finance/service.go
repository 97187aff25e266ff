// Package finance records payments and reports client credit standing.
package finance

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/credit"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRequest records money received from a client
type PaymentRequest struct {
	ClientID        string              `json:"client_id"`
	Amount          decimal.Decimal     `json:"amount"`
	Method          model.PaymentMethod `json:"method"`
	ReferenceNumber string              `json:"reference_number"`
	Notes           string              `json:"notes"`
	Date            string              `json:"date"`
}

// Account is one client's credit position
type Account struct {
	ClientID           string              `json:"client_id"`
	CompanyName        string              `json:"company_name"`
	AccountStatus      model.AccountStatus `json:"account_status"`
	PaymentTerms       model.PaymentTerms  `json:"payment_terms"`
	CreditLimit        decimal.Decimal     `json:"credit_limit"`
	OutstandingBalance decimal.Decimal     `json:"outstanding_balance"`
	RemainingCredit    decimal.Decimal     `json:"remaining_credit"`
	Utilization        decimal.Decimal     `json:"utilization"`
	Standing           credit.Standing     `json:"standing"`
}

// Summary is the finance dashboard
type Summary struct {
	TotalOutstanding  decimal.Decimal `json:"total_outstanding"`
	TotalCreditLimit  decimal.Decimal `json:"total_credit_limit"`
	TotalCollected    decimal.Decimal `json:"total_collected"`
	OverLimitClients  int             `json:"over_limit_clients"`
	NearLimitClients  int             `json:"near_limit_clients"`
	SuspendedAccounts int             `json:"suspended_accounts"`
	Accounts          []Account       `json:"accounts"`
}

// Service handles payments and credit reporting
type Service struct {
	store     repository.Store
	metrics   *prometheus.Metrics
	nearRatio float64
	now       func() time.Time
}

// NewService creates the finance service; nearRatio is the utilisation that counts as near the limit
func NewService(store repository.Store, metrics *prometheus.Metrics, nearRatio float64) *Service {
	return &Service{store: store, metrics: metrics, nearRatio: nearRatio, now: time.Now}
}

func (s *Service) account(c *model.Client) Account {
	return Account{
		ClientID:           c.ID,
		CompanyName:        c.CompanyName,
		AccountStatus:      c.AccountStatus,
		PaymentTerms:       c.PaymentTerms,
		CreditLimit:        c.CreditLimit,
		OutstandingBalance: c.OutstandingBalance,
		RemainingCredit:    credit.Remaining(c),
		Utilization:        credit.Utilization(c).Round(4),
		Standing:           credit.StandingOf(c, s.nearRatio),
	}
}

// RecordPayment stores the payment and lowers the client's outstanding balance,
// never below zero. Overpayment is not carried as credit.
func (s *Service) RecordPayment(ctx context.Context, actor access.Actor, req PaymentRequest) (*model.Payment, error) {
	if err := actor.Require(access.PaymentRecord); err != nil {
		return nil, err
	}
	if req.ClientID == "" {
		return nil, apperror.Invalid("client_id is required")
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.Invalid("amount must be positive")
	}
	if !req.Method.Valid() {
		return nil, apperror.Invalid("method must be cash, transfer or cheque")
	}
	if req.Date == "" {
		req.Date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, apperror.Invalid("date must be YYYY-MM-DD")
	}

	var payment *model.Payment
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		c, err := tx.Clients().GetForUpdate(ctx, req.ClientID)
		if errors.Is(err, repository.ErrNotFound) {
			return errors.Wrapf(apperror.ErrClientNotFound, "client %s", req.ClientID)
		}
		if err != nil {
			return errors.Wrapf(err, "load client %s", req.ClientID)
		}

		c.OutstandingBalance = decimal.Max(decimal.Zero, c.OutstandingBalance.Sub(req.Amount))
		if err := tx.Clients().Upsert(ctx, c); err != nil {
			return errors.Wrap(err, "update outstanding balance")
		}

		payment = &model.Payment{
			ID:              uuid.NewString(),
			ClientID:        c.ID,
			ClientName:      c.CompanyName,
			Amount:          req.Amount,
			Method:          req.Method,
			ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
			Notes:           strings.TrimSpace(req.Notes),
			Date:            req.Date,
		}
		if err := tx.Payments().Upsert(ctx, payment); err != nil {
			return errors.Wrap(err, "save payment")
		}
		return audit.Record(ctx, tx, actor, audit.ActionPayment, audit.EntityPayment, payment.ID,
			"%s %s from %s, balance now %s", req.Method, req.Amount.StringFixed(2), c.CompanyName, c.OutstandingBalance.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(string(payment.Method))
	logger.FromContext(ctx).Info("Payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("client_id", payment.ClientID),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", string(payment.Method)))
	return payment, nil
}

// ListPayments returns payments newest first, for one client or all when clientID is empty
func (s *Service) ListPayments(ctx context.Context, actor access.Actor, clientID string) ([]model.Payment, error) {
	if err := actor.Require(access.FinanceView); err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().List(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	return payments, nil
}

// Account returns one client's credit position. Client users may read their own.
func (s *Service) Account(ctx context.Context, actor access.Actor, clientID string) (*Account, error) {
	if actor.ScopedToClient() {
		if err := actor.RequireClient(clientID); err != nil {
			return nil, err
		}
	} else if err := actor.Require(access.FinanceView); err != nil {
		return nil, err
	}

	c, err := s.store.Clients().Get(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrapf(apperror.ErrClientNotFound, "client %s", clientID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load client %s", clientID)
	}
	acct := s.account(c)
	return &acct, nil
}

// Summary totals balances and limits across all clients
func (s *Service) Summary(ctx context.Context, actor access.Actor) (*Summary, error) {
	if err := actor.Require(access.FinanceView); err != nil {
		return nil, err
	}
	clients, err := s.store.Clients().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list clients")
	}
	payments, err := s.store.Payments().List(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "list payments")
	}

	sum := &Summary{
		TotalOutstanding: decimal.Zero,
		TotalCreditLimit: decimal.Zero,
		TotalCollected:   decimal.Zero,
		Accounts:         make([]Account, 0, len(clients)),
	}
	for i := range clients {
		acct := s.account(&clients[i])
		sum.Accounts = append(sum.Accounts, acct)
		sum.TotalOutstanding = sum.TotalOutstanding.Add(acct.OutstandingBalance)
		sum.TotalCreditLimit = sum.TotalCreditLimit.Add(acct.CreditLimit)
		switch acct.Standing {
		case credit.StandingOverLimit:
			sum.OverLimitClients++
		case credit.StandingNearLimit:
			sum.NearLimitClients++
		}
		if acct.AccountStatus == model.AccountSuspended {
			sum.SuspendedAccounts++
		}
	}
	for _, p := range payments {
		sum.TotalCollected = sum.TotalCollected.Add(p.Amount)
	}
	return sum, nil
}
