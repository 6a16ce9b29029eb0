package domain_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

func TestSelectWeighted_RangeBoundaries(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("v1", 10, domain.StabilityStable),
		entry("v2", 30, domain.StabilityStable),
		entry("v3", 60, domain.StabilityStable),
	}
	cases := []struct {
		draw int
		want string
	}{
		{5, "v1"}, {10, "v1"}, {11, "v2"}, {40, "v2"}, {41, "v3"}, {100, "v3"},
	}
	for _, c := range cases {
		got, ok := domain.SelectWeighted(entries, c.draw)
		require.True(t, ok, "draw %d", c.draw)
		assert.Equal(t, c.want, got.Version, "draw %d", c.draw)
	}
}

func TestSelectWeighted_SortsByPercentage(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("v3", 60, domain.StabilityStable),
		entry("v1", 10, domain.StabilityStable),
		entry("v2", 30, domain.StabilityStable),
	}
	got, ok := domain.SelectWeighted(entries, 10)
	require.True(t, ok)
	assert.Equal(t, "v1", got.Version)
	got, ok = domain.SelectWeighted(entries, 41)
	require.True(t, ok)
	assert.Equal(t, "v3", got.Version)

	assert.Equal(t, "v3", entries[0].Version, "input must not be reordered")
}

func TestSelectWeighted_EqualPercentagesKeepInputOrder(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("b", 50, domain.StabilityStable),
		entry("a", 50, domain.StabilityStable),
	}
	got, _ := domain.SelectWeighted(entries, 50)
	assert.Equal(t, "b", got.Version)
	got, _ = domain.SelectWeighted(entries, 51)
	assert.Equal(t, "a", got.Version)
}

func TestSelectWeighted_TotalOverValidPlan(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("v1", 0, domain.StabilityUnstable),
		entry("v2", 25, domain.StabilityStable),
		entry("v3", 25, domain.StabilityStable),
		entry("v4", 50, domain.StabilityStable),
	}
	require.NoError(t, domain.ValidatePlan(entries))

	counts := map[string]int{}
	for d := domain.MinDraw; d <= domain.MaxDraw; d++ {
		got, ok := domain.SelectWeighted(entries, d)
		require.True(t, ok, "draw %d matched nothing", d)
		counts[got.Version]++
	}
	assert.Equal(t, map[string]int{"v2": 25, "v3": 25, "v4": 50}, counts)
}

func TestSelectWeighted_ZeroPercentageNeverSelected(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("v1", 0, domain.StabilityUnstable),
		entry("v2", 100, domain.StabilityStable),
	}
	for d := domain.MinDraw; d <= domain.MaxDraw; d++ {
		got, ok := domain.SelectWeighted(entries, d)
		require.True(t, ok)
		assert.Equal(t, "v2", got.Version, "draw %d", d)
	}
}

func TestSelectWeighted_NoMatchWhenPlanUnderCovers(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("v1", 10, domain.StabilityStable),
		entry("v2", 20, domain.StabilityStable),
	}
	_, ok := domain.SelectWeighted(entries, 31)
	assert.False(t, ok)
	_, ok = domain.SelectWeighted(nil, 1)
	assert.False(t, ok)
}

func TestSelectWeighted_FrequenciesConvergeToPercentages(t *testing.T) {
	entries := []domain.RampupEntry{
		entry("v1", 10, domain.StabilityStable),
		entry("v2", 30, domain.StabilityStable),
		entry("v3", 60, domain.StabilityStable),
	}
	draws := &domain.RandomDraws{Rand: rand.New(rand.NewPCG(1, 2))}

	const n = 100000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		got, ok := domain.SelectWeighted(entries, draws.Draw("any"))
		require.True(t, ok)
		counts[got.Version]++
	}
	for _, e := range entries {
		freq := float64(counts[e.Version]) / n
		assert.InDelta(t, float64(e.Percentage)/100, freq, 0.01, "version %s", e.Version)
	}
}
