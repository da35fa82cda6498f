package risk

import "fmt"

// TierCheck is the result of one limit tier: how many more units it allows
// before its cap is hit.
type TierCheck struct {
	Tier      string
	Allowed   float64
	Exhausted bool
}

// AvailableUnits runs the four-tier check of spec.md §4.9 for a proposed
// addition of `add` units to `ticker`, given the current per-ticker unit
// map `held`. It returns the binding (tightest) tier's allowance and name.
func AvailableUnits(ticker string, add float64, held map[string]float64, cfg Config) (allowed float64, bindingTier string) {
	checks := []TierCheck{
		singleTierCheck(ticker, held, cfg),
		correlatedTierCheck(ticker, held, cfg),
		diversifiedTierCheck(held, cfg),
		totalTierCheck(held, cfg),
	}

	allowed = add
	bindingTier = "none"
	for _, c := range checks {
		// <= lets a later, equally tight tier take the binding label over an
		// earlier one (spec.md §8 scenario 5: single and correlated tie, and
		// correlated binds).
		if c.Allowed <= allowed {
			allowed = c.Allowed
			bindingTier = c.Tier
		}
	}
	if allowed < 0 {
		allowed = 0
	}
	return allowed, bindingTier
}

func singleTierCheck(ticker string, held map[string]float64, cfg Config) TierCheck {
	cur := held[ticker]
	room := float64(cfg.Limits.Single) - cur
	return TierCheck{Tier: "single", Allowed: room, Exhausted: room <= 0}
}

// correlatedTierCheck finds, among every group containing ticker, the
// tightest remaining room; a ticker with no group membership has no
// correlated constraint.
func correlatedTierCheck(ticker string, held map[string]float64, cfg Config) TierCheck {
	tightest := TierCheck{Tier: "correlated", Allowed: positiveInfinity()}
	for group, members := range cfg.CorrelationGroups {
		if !contains(members, ticker) {
			continue
		}
		sum := 0.0
		for _, m := range members {
			sum += held[m]
		}
		room := float64(cfg.Limits.Correlated) - sum
		if room < tightest.Allowed {
			tightest = TierCheck{Tier: fmt.Sprintf("correlated:%s", group), Allowed: room, Exhausted: room <= 0}
		}
	}
	if tightest.Allowed == positiveInfinity() {
		return TierCheck{Tier: "correlated", Allowed: positiveInfinity()}
	}
	return tightest
}

// diversifiedTierCheck sums units across every grouped member once per
// group plus every ungrouped member (spec.md §4.9).
func diversifiedTierCheck(held map[string]float64, cfg Config) TierCheck {
	counted := make(map[string]bool)
	total := 0.0
	for _, members := range cfg.CorrelationGroups {
		groupSum := 0.0
		for _, m := range members {
			groupSum += held[m]
			counted[m] = true
		}
		total += groupSum
	}
	for ticker, units := range held {
		if !counted[ticker] {
			total += units
		}
	}
	room := float64(cfg.Limits.Diversified) - total
	return TierCheck{Tier: "diversified", Allowed: room, Exhausted: room <= 0}
}

func totalTierCheck(held map[string]float64, cfg Config) TierCheck {
	total := 0.0
	for _, units := range held {
		total += units
	}
	room := float64(cfg.Limits.Total) - total
	return TierCheck{Tier: "total", Allowed: room, Exhausted: room <= 0}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func positiveInfinity() float64 {
	return 1e18
}
