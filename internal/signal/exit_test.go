package signal

import (
	"testing"

	"github.com/hanlyang/backtest/internal/indicators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(macd, sig, hist []float64) indicators.MACDLine {
	return indicators.MACDLine{MACD: macd, Signal: sig, Histogram: hist}
}

func TestComputeConditions_DeadCrossLong(t *testing.T) {
	l := line(
		[]float64{1, 0.5, -0.5},
		[]float64{0, 0.2, 0.1},
		[]float64{1, 0.3, -0.6},
	)
	c := ComputeConditions(l, SideLong)
	require.Len(t, c.SignalCross, 3)
	assert.False(t, c.SignalCross[0])
	assert.False(t, c.SignalCross[1])
	assert.True(t, c.SignalCross[2]) // macd 0.5>=0.2 then -0.5<0.1
}

func TestMergeExit_SequentialPicksHighestLevel(t *testing.T) {
	upper := ThreeStepConditions{HistPeakout: []bool{true}, MACDPeakout: []bool{false}, SignalCross: []bool{false}}
	middle := ThreeStepConditions{HistPeakout: []bool{false}, MACDPeakout: []bool{true}, SignalCross: []bool{false}}
	lower := ThreeStepConditions{HistPeakout: []bool{false}, MACDPeakout: []bool{false}, SignalCross: []bool{true}}

	d := MergeExit(upper, middle, lower, 0, MergeSequential)
	assert.Equal(t, ExitLevel3, d.Level)
	assert.Equal(t, 1.0, d.Ratio)
	assert.Equal(t, "exit_signal(lower)", d.Reason())
}

func TestMergeExit_SequentialLevel1Only(t *testing.T) {
	upper := ThreeStepConditions{HistPeakout: []bool{true}, MACDPeakout: []bool{false}, SignalCross: []bool{false}}
	middle := ThreeStepConditions{HistPeakout: []bool{false}, MACDPeakout: []bool{false}, SignalCross: []bool{false}}
	lower := ThreeStepConditions{HistPeakout: []bool{false}, MACDPeakout: []bool{false}, SignalCross: []bool{false}}

	d := MergeExit(upper, middle, lower, 0, MergeSequential)
	assert.Equal(t, ExitLevel1, d.Level)
	assert.Equal(t, 0.0, d.Ratio)
}

func TestMergeExit_Majority(t *testing.T) {
	upper := ThreeStepConditions{SignalCross: []bool{true}, MACDPeakout: []bool{false}, HistPeakout: []bool{false}}
	middle := ThreeStepConditions{SignalCross: []bool{true}, MACDPeakout: []bool{false}, HistPeakout: []bool{false}}
	lower := ThreeStepConditions{SignalCross: []bool{false}, MACDPeakout: []bool{false}, HistPeakout: []bool{false}}

	d := MergeExit(upper, middle, lower, 0, MergeMajority)
	assert.Equal(t, ExitLevel3, d.Level)
}

func TestMergeExit_FastestUsesUpperOnly(t *testing.T) {
	upper := ThreeStepConditions{SignalCross: []bool{true}, MACDPeakout: []bool{true}, HistPeakout: []bool{true}}
	middle := ThreeStepConditions{} // should be ignored
	lower := ThreeStepConditions{}

	d := MergeExit(upper, middle, lower, 0, MergeFastest)
	assert.Equal(t, ExitLevel3, d.Level)
}
