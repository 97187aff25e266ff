package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/pricing"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RuleInput is a contractual price for one client and product: a fixed
// price or a list of quantity tiers
type RuleInput struct {
	ClientID   string              `json:"client_id"`
	ProductID  string              `json:"product_id"`
	FixedPrice *decimal.Decimal    `json:"fixed_price"`
	Tiers      []model.PricingTier `json:"tiers"`
}

// UpsertRule stores the rule for the pair, replacing any rule it already has
func (s *Service) UpsertRule(ctx context.Context, actor access.Actor, in RuleInput) (*model.ClientProductPricing, error) {
	if err := actor.Require(access.PricingManage); err != nil {
		return nil, err
	}
	rule := &model.ClientProductPricing{
		ClientID:   in.ClientID,
		ProductID:  in.ProductID,
		FixedPrice: in.FixedPrice,
		Tiers:      in.Tiers,
	}
	if err := pricing.ValidateRule(rule); err != nil {
		return nil, err
	}

	action := audit.ActionCreate
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		c, err := getClient(ctx, tx, rule.ClientID)
		if err != nil {
			return err
		}
		p, err := getProduct(ctx, tx, rule.ProductID)
		if err != nil {
			return err
		}

		existing, err := tx.Pricing().Find(ctx, rule.ClientID, rule.ProductID)
		switch {
		case err == nil:
			rule.ID = existing.ID
			rule.CreatedAt = existing.CreatedAt
			action = audit.ActionUpdate
		case errors.Is(err, repository.ErrNotFound):
			rule.ID = uuid.NewString()
		default:
			return errors.Wrap(err, "find existing rule")
		}

		if err := tx.Pricing().Upsert(ctx, rule); err != nil {
			return errors.Wrap(err, "save pricing rule")
		}
		return audit.Record(ctx, tx, actor, action, audit.EntityPricing, rule.ID,
			"%s pricing for %s on %s", rule.Kind(), c.CompanyName, p.Name)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Pricing rule saved",
		zap.String("rule_id", rule.ID),
		zap.String("client_id", rule.ClientID),
		zap.String("product_id", rule.ProductID),
		zap.String("kind", string(rule.Kind())))
	return rule, nil
}

// GetRule returns one pricing rule
func (s *Service) GetRule(ctx context.Context, actor access.Actor, id string) (*model.ClientProductPricing, error) {
	if err := actor.Require(access.PricingView); err != nil {
		return nil, err
	}
	return getRule(ctx, s.store, id)
}

// ListRules returns the rules of one client, or every rule when clientID is empty
func (s *Service) ListRules(ctx context.Context, actor access.Actor, clientID string) ([]model.ClientProductPricing, error) {
	if err := actor.Require(access.PricingView); err != nil {
		return nil, err
	}
	rules, err := s.store.Pricing().List(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list pricing rules")
	}
	return rules, nil
}

// DeleteRule drops a rule; the pair falls back to the product's base price
func (s *Service) DeleteRule(ctx context.Context, actor access.Actor, id string) error {
	if err := actor.Require(access.PricingManage); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		rule, err := getRule(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Pricing().Delete(ctx, id); err != nil {
			return errors.Wrap(err, "delete pricing rule")
		}
		return audit.Record(ctx, tx, actor, audit.ActionDelete, audit.EntityPricing, id,
			"removed %s pricing of %s for client %s", rule.Kind(), rule.ProductID, rule.ClientID)
	})
}
