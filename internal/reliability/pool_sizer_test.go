package reliability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRecommendedConcurrency_NeverExceedsNumCPU(t *testing.T) {
	sizer := NewPoolSizer(zerolog.Nop())
	n := sizer.RecommendedConcurrency(10_000, 0)
	snap := sizer.Sample()
	assert.LessOrEqual(t, n, snap.NumCPU)
}

func TestRecommendedConcurrency_NeverReturnsLessThanOne(t *testing.T) {
	sizer := NewPoolSizer(zerolog.Nop())
	assert.GreaterOrEqual(t, sizer.RecommendedConcurrency(0, 0), 1)
	assert.GreaterOrEqual(t, sizer.RecommendedConcurrency(-5, 1e12), 1)
}

func TestRecommendedConcurrency_CapsToMemoryBoundWhenTight(t *testing.T) {
	sizer := NewPoolSizer(zerolog.Nop())
	snap := sizer.Sample()
	if snap.AvailableMemoryMB < 0 {
		t.Skip("memory sampling unavailable on this host")
	}
	n := sizer.RecommendedConcurrency(1000, snap.AvailableMemoryMB*1000)
	assert.Equal(t, 1, n)
}
