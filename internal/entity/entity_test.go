package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldPrice(t *testing.T) {
	r := &Restaurant{}
	assert.False(t, r.HasPriceStats())

	r.FoldPrice(10000)
	require.True(t, r.HasPriceStats())
	assert.Equal(t, int64(10000), *r.PriceAvg)
	assert.Equal(t, int64(1), r.PriceCount)

	r.FoldPrice(20000)
	assert.Equal(t, int64(10000), *r.PriceMin)
	assert.Equal(t, int64(20000), *r.PriceMax)
	assert.Equal(t, int64(15000), *r.PriceAvg)
	assert.Equal(t, int64(2), r.PriceCount)
	assert.Equal(t, int64(20000), r.Price)

	r.FoldPrice(5000)
	assert.Equal(t, int64(5000), *r.PriceMin)
	assert.Equal(t, int64(11666), *r.PriceAvg)
	assert.Equal(t, int64(3), r.PriceCount)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(3), floorDiv(7, 2))
	assert.Equal(t, int64(-4), floorDiv(-7, 2))
	assert.Equal(t, int64(-3), floorDiv(-6, 2))
}

func TestIdentityKey_Truncates(t *testing.T) {
	name, addr := IdentityKey(strings.Repeat("가", 70), strings.Repeat("a", 300))
	assert.Equal(t, MaxNameRunes, len([]rune(name)))
	assert.Len(t, addr, MaxAddressRunes)

	obs := Observation{Name: "맛집", Address: "관악로 1"}
	n, a := obs.Key()
	assert.Equal(t, "맛집", n)
	assert.Equal(t, "관악로 1", a)
}

func TestSentinel(t *testing.T) {
	assert.True(t, IsSentinel(0, 0))
	assert.False(t, Unresolved().Resolved())
	assert.True(t, ResolvedLocation{Lat: 37.5, Lng: 127}.Resolved())
	assert.False(t, (&Restaurant{}).HasCoordinates())
	assert.True(t, NormalizedPlace{}.Empty())
	assert.False(t, NormalizedPlace{Name: "맛집"}.Empty())
}
