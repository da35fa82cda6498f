package signal

import (
	"testing"

	"github.com/hanlyang/backtest/internal/indicators"
	"github.com/stretchr/testify/assert"
)

func TestGenerateEntry_NormalBuy(t *testing.T) {
	r := GenerateEntry(6, 6, indicators.DirectionUp, indicators.DirectionUp, indicators.DirectionUp, false)
	assert.Equal(t, NormalBuy, r.Kind)
	assert.Equal(t, 2, r.Kind.Value())
	assert.False(t, r.Contrarian)
}

func TestGenerateEntry_EarlyBuyRequiresFlag(t *testing.T) {
	r := GenerateEntry(5, 5, indicators.DirectionUp, indicators.DirectionUp, indicators.DirectionUp, false)
	assert.Equal(t, NoEntry, r.Kind)

	r = GenerateEntry(5, 5, indicators.DirectionUp, indicators.DirectionUp, indicators.DirectionUp, true)
	assert.Equal(t, EarlyBuy, r.Kind)
	assert.Equal(t, 1, r.Kind.Value())
}

func TestGenerateEntry_NormalSell(t *testing.T) {
	r := GenerateEntry(3, 3, indicators.DirectionDown, indicators.DirectionDown, indicators.DirectionDown, false)
	assert.Equal(t, NormalSell, r.Kind)
	assert.Equal(t, -2, r.Kind.Value())
}

func TestGenerateEntry_NoSignalOnMixedDirection(t *testing.T) {
	r := GenerateEntry(6, 6, indicators.DirectionUp, indicators.DirectionDown, indicators.DirectionUp, false)
	assert.Equal(t, NoEntry, r.Kind)
}

func TestGenerateEntry_ContrarianWhenStageOverridesArrangement(t *testing.T) {
	// MACD-cross overrode the raw arrangement (1) to stage 6.
	r := GenerateEntry(6, 1, indicators.DirectionUp, indicators.DirectionUp, indicators.DirectionUp, false)
	assert.Equal(t, NormalBuy, r.Kind)
	assert.True(t, r.Contrarian)
}
