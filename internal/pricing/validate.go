package pricing

import (
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/model"
)

// ValidateRule checks a rule before it is stored. Tiers must cover every
// quantity from 1 upward exactly once: contiguous, ascending, last one open-ended.
func ValidateRule(rule *model.ClientProductPricing) error {
	if rule.ClientID == "" || rule.ProductID == "" {
		return apperror.Invalid("client_id and product_id are required")
	}

	hasFixed := rule.FixedPrice != nil
	hasTiers := len(rule.Tiers) > 0
	switch {
	case hasFixed && hasTiers:
		return apperror.Invalid("a pricing rule has either a fixed price or tiers, not both")
	case !hasFixed && !hasTiers:
		return apperror.Invalid("a pricing rule needs a fixed price or at least one tier")
	case hasFixed:
		if rule.FixedPrice.IsNegative() {
			return apperror.Invalid("fixed price must not be negative")
		}
		return nil
	}

	return validateTiers(rule.Tiers)
}

func validateTiers(tiers []model.PricingTier) error {
	if tiers[0].MinQty != 1 {
		return apperror.Invalid("first tier must start at quantity 1, got %d", tiers[0].MinQty)
	}
	last := len(tiers) - 1
	for i, t := range tiers {
		if t.Price.IsNegative() {
			return apperror.Invalid("tier %d: price must not be negative", i+1)
		}
		if t.MaxQty == nil {
			if i != last {
				return apperror.Invalid("tier %d: only the last tier may be open-ended", i+1)
			}
			continue
		}
		if i == last {
			return apperror.Invalid("last tier must be open-ended")
		}
		if *t.MaxQty < t.MinQty {
			return apperror.Invalid("tier %d: max quantity %d is below min quantity %d", i+1, *t.MaxQty, t.MinQty)
		}
		if tiers[i+1].MinQty != *t.MaxQty+1 {
			return apperror.Invalid("tier %d must start at %d, got %d", i+2, *t.MaxQty+1, tiers[i+1].MinQty)
		}
	}
	return nil
}
