package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

func TestDrawForKey_KnownKeys(t *testing.T) {
	cases := map[string]int{
		"":                    1,
		"hello":               52,
		"myproject.daily_etl": 44,
		"projectA.flow1":      70,
		"projectB.flow2":      63,
		"azkaban.test-flow":   18,
		"reporting.nightly":   77,
	}
	for key, want := range cases {
		assert.Equal(t, want, domain.DrawForKey([]byte(key)), "key %q", key)
	}
}

// Sum32 of "hello" is 0x248bfa47 (positive), so the draw is that value
// mod 100 plus one.
func TestDrawForKey_UsesZeroSeed(t *testing.T) {
	assert.Equal(t, int(int32(0x248bfa47)%100)+1, domain.DrawForKey([]byte("hello")))
	assert.Equal(t, 1, domain.DrawForKey(nil), "empty key hashes to 0 with seed 0")
}

func TestDrawForKey_IsStable(t *testing.T) {
	key := []byte("reporting.nightly_rollup")
	first := domain.DrawForKey(key)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, domain.DrawForKey(key))
	}
}

func TestDrawForKey_InRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d := domain.DrawForKey([]byte{byte(i), byte(i >> 8), 'k'})
		assert.GreaterOrEqual(t, d, domain.MinDraw)
		assert.LessOrEqual(t, d, domain.MaxDraw)
	}
}

func TestDrawFromHash_MinInt32(t *testing.T) {
	assert.Equal(t, 1, domain.DrawFromHash(math.MinInt32))
}

func TestDrawFromHash_Signs(t *testing.T) {
	assert.Equal(t, 1, domain.DrawFromHash(0))
	assert.Equal(t, 8, domain.DrawFromHash(-7))
	assert.Equal(t, 8, domain.DrawFromHash(7))
	assert.Equal(t, 48, domain.DrawFromHash(math.MaxInt32))
}
