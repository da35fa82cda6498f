package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableUnits_SingleTierBinds(t *testing.T) {
	cfg := DefaultConfig() // single=4
	held := map[string]float64{"005930": 3}
	allowed, tier := AvailableUnits("005930", 2, held, cfg)
	assert.Equal(t, 1.0, allowed)
	assert.Equal(t, "single", tier)
}

func TestAvailableUnits_CorrelatedGroupBinds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CorrelationGroups = map[string][]string{
		"semis": {"005930", "000660"},
	}
	held := map[string]float64{"005930": 0, "000660": 5} // group sum 5, correlated limit 6, room 1
	allowed, tier := AvailableUnits("005930", 3, held, cfg)
	assert.Equal(t, 1.0, allowed) // correlated room (1) is tighter than single room (4)
	assert.Contains(t, tier, "correlated")
}

func TestAvailableUnits_TiedTiersBindToCorrelated(t *testing.T) {
	// spec.md §8 scenario 5: held {005930:3, 000660:2} in group 반도체,
	// requesting +2 on 005930. single room = 4-3=1, correlated room = 6-5=1:
	// a tie, and correlated must win it.
	cfg := DefaultConfig()
	cfg.CorrelationGroups = map[string][]string{
		"반도체": {"005930", "000660"},
	}
	held := map[string]float64{"005930": 3, "000660": 2}
	allowed, tier := AvailableUnits("005930", 2, held, cfg)
	assert.Equal(t, 1.0, allowed)
	assert.Contains(t, tier, "correlated")
}

func TestAvailableUnits_DiversifiedCountsGroupsOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.Diversified = 10
	cfg.CorrelationGroups = map[string][]string{
		"semis": {"005930", "000660"},
	}
	held := map[string]float64{"005930": 3, "000660": 2, "035720": 4}
	// diversified total = (3+2) + 4 = 9, room = 1; single limit untouched for 035720 (4-4=0 would bind tighter)
	cfg.Limits.Single = 100
	allowed, tier := AvailableUnits("035720", 5, held, cfg)
	assert.Equal(t, 1.0, allowed)
	assert.Equal(t, "diversified", tier)
}

func TestAvailableUnits_TotalTierBinds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.Total = 12
	cfg.Limits.Diversified = 100
	held := map[string]float64{"a": 5, "b": 5}
	allowed, tier := AvailableUnits("c", 5, held, cfg)
	assert.Equal(t, 2.0, allowed)
	assert.Equal(t, "total", tier)
}

func TestAvailableUnits_NoBindingTierAllowsFullRequest(t *testing.T) {
	cfg := DefaultConfig()
	held := map[string]float64{}
	allowed, tier := AvailableUnits("005930", 2, held, cfg)
	assert.Equal(t, 2.0, allowed)
	assert.Equal(t, "none", tier)
}

func TestAvailableUnits_ExhaustedTierReturnsZero(t *testing.T) {
	cfg := DefaultConfig()
	held := map[string]float64{"005930": 4}
	allowed, tier := AvailableUnits("005930", 1, held, cfg)
	assert.Equal(t, 0.0, allowed)
	assert.Equal(t, "single", tier)
}
