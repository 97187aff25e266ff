// Package pricing resolves the unit price a client pays for a product at a given quantity.
package pricing

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source tells where a resolved price came from
type Source string

const (
	SourceBase         Source = "base"
	SourceFixed        Source = "fixed"
	SourceTier         Source = "tier"
	SourceTierFallback Source = "tier_fallback"
)

// Quote is a resolved price with its provenance
type Quote struct {
	ClientID  string          `json:"client_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Source    Source          `json:"source"`
	// TierIndex is the matched tier for tier sources, -1 otherwise
	TierIndex int `json:"tier_index"`
}

// Resolver reads the pricing table on every call; nothing is cached between calls.
type Resolver struct {
	products repository.ProductRepository
	rules    repository.PricingRepository
	metrics  *prometheus.Metrics
}

// NewResolver creates a resolver over the store's catalog and pricing table
func NewResolver(store repository.Store, metrics *prometheus.Metrics) *Resolver {
	return &Resolver{
		products: store.Products(),
		rules:    store.Pricing(),
		metrics:  metrics,
	}
}

// WithStore returns a resolver reading through tx, for use inside Store.Atomic
func (r *Resolver) WithStore(tx repository.Store) *Resolver {
	return &Resolver{products: tx.Products(), rules: tx.Pricing(), metrics: r.metrics}
}

// ResolvePrice returns the unit price for quantity units of productID sold to clientID.
// Quantity must already be validated as positive by the caller.
func (r *Resolver) ResolvePrice(ctx context.Context, clientID, productID string, quantity int) (decimal.Decimal, error) {
	q, err := r.Quote(ctx, clientID, productID, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	return q.UnitPrice, nil
}

// Quote resolves the price and reports which rule produced it
func (r *Resolver) Quote(ctx context.Context, clientID, productID string, quantity int) (*Quote, error) {
	q := &Quote{ClientID: clientID, ProductID: productID, Quantity: quantity, TierIndex: -1}

	rule, err := r.rules.Find(ctx, clientID, productID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		rule = nil
	case err != nil:
		return nil, errors.Wrapf(err, "look up pricing rule for %s/%s", clientID, productID)
	}

	switch {
	case rule == nil:
		if err := r.fromBasePrice(ctx, q); err != nil {
			return nil, err
		}
	case rule.FixedPrice != nil:
		q.UnitPrice = *rule.FixedPrice
		q.Source = SourceFixed
	case len(rule.Tiers) == 0:
		logger.FromContext(ctx).Warn("Pricing rule has neither fixed price nor tiers, using base price",
			zap.String("rule_id", rule.ID))
		if err := r.fromBasePrice(ctx, q); err != nil {
			return nil, err
		}
	default:
		if idx, ok := MatchTier(rule.Tiers, quantity); ok {
			q.UnitPrice = rule.Tiers[idx].Price
			q.Source = SourceTier
			q.TierIndex = idx
		} else {
			r.tierFallback(ctx, rule, q)
		}
	}

	q.LineTotal = LineTotal(q.UnitPrice, quantity)
	r.metrics.RecordPriceResolution(string(q.Source))
	return q, nil
}

func (r *Resolver) fromBasePrice(ctx context.Context, q *Quote) error {
	product, err := r.products.Get(ctx, q.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return errors.Wrapf(apperror.ErrProductNotFound, "product %s", q.ProductID)
	}
	if err != nil {
		return errors.Wrapf(err, "get product %s", q.ProductID)
	}
	q.UnitPrice = product.BasePrice
	q.Source = SourceBase
	return nil
}

// tierFallback charges the first tier's price when no tier contains the quantity.
// Quantities in a gap are quoted rather than rejected; the event is logged and counted.
func (r *Resolver) tierFallback(ctx context.Context, rule *model.ClientProductPricing, q *Quote) {
	logger.FromContext(ctx).Warn("No pricing tier matched quantity, falling back to first tier",
		zap.String("rule_id", rule.ID),
		zap.String("client_id", q.ClientID),
		zap.String("product_id", q.ProductID),
		zap.Int("quantity", q.Quantity))
	q.UnitPrice = rule.Tiers[0].Price
	q.Source = SourceTierFallback
	q.TierIndex = 0
}

// MatchTier returns the index of the first tier containing quantity, in stored order
func MatchTier(tiers []model.PricingTier, quantity int) (int, bool) {
	for i, t := range tiers {
		if t.Contains(quantity) {
			return i, true
		}
	}
	return -1, false
}

// LineTotal is quantity times unit price
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
