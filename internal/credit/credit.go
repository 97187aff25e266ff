// Package credit decides whether a client may take on a new order total.
package credit

import (
	"fmt"

	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/shopspring/decimal"
)

// Reason explains a decline
type Reason string

const (
	ReasonCreditLimitExceeded Reason = "credit_limit_exceeded"
	ReasonAccountSuspended    Reason = "account_suspended"
)

// Decision is the outcome of the gate. A decline is an expected result, not an error.
type Decision struct {
	Admitted        bool            `json:"admitted"`
	Reason          Reason          `json:"reason,omitempty"`
	RemainingCredit decimal.Decimal `json:"remaining_credit"`
}

// Outcome labels the decision for metrics and logs
func (d Decision) Outcome() string {
	if d.Admitted {
		return "admitted"
	}
	return string(d.Reason)
}

// Message is the user-facing explanation of a decline
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonAccountSuspended:
		return "client account is suspended"
	case ReasonCreditLimitExceeded:
		return fmt.Sprintf("order exceeds available credit (remaining %s)", d.RemainingCredit.StringFixed(2))
	}
	return ""
}

// Remaining is the credit limit minus the outstanding balance. It is negative for over-limit clients.
func Remaining(client *model.Client) decimal.Decimal {
	return client.CreditLimit.Sub(client.OutstandingBalance)
}

// AdmitOrder applies the credit gate. Suspension is checked first and declines
// any total, zero included; otherwise a total equal to the remaining credit is admitted.
// The gate never mutates the client.
func AdmitOrder(client *model.Client, proposedTotal decimal.Decimal) Decision {
	remaining := Remaining(client)
	if client.Suspended() {
		return Decision{Reason: ReasonAccountSuspended, RemainingCredit: remaining}
	}
	if proposedTotal.GreaterThan(remaining) {
		return Decision{Reason: ReasonCreditLimitExceeded, RemainingCredit: remaining}
	}
	return Decision{Admitted: true, RemainingCredit: remaining}
}

// Standing buckets a client's utilisation for the finance dashboard
type Standing string

const (
	StandingSafe      Standing = "safe"
	StandingNearLimit Standing = "near_limit"
	StandingOverLimit Standing = "over_limit"
)

// Utilization is outstanding balance over credit limit
func Utilization(client *model.Client) decimal.Decimal {
	if !client.CreditLimit.IsPositive() {
		if client.OutstandingBalance.IsPositive() {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	}
	return client.OutstandingBalance.Div(client.CreditLimit)
}

// StandingOf classifies utilisation: at or above 1 is over the limit, at or above nearRatio is near it
func StandingOf(client *model.Client, nearRatio float64) Standing {
	u := Utilization(client)
	switch {
	case u.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return StandingOverLimit
	case u.GreaterThanOrEqual(decimal.NewFromFloat(nearRatio)):
		return StandingNearLimit
	}
	return StandingSafe
}
