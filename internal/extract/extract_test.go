package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestFromGrid_Direct(t *testing.T) {
	e := NewExtractor(nil, nil)
	grid := [][]string{
		{"집행내역"},
		{"사용처", "인원", "금액"},
		{"맛집", "4명", "120,000원"},
		{"", "", ""},
		{"국밥집", "", "9,000"},
	}

	rows, strategy := e.FromGrid(grid)
	assert.Equal(t, StrategyDirect, strategy)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.CandidateRow{
		PlaceRaw:    "맛집",
		PersonCount: intPtr(4),
		AmountTotal: int64Ptr(120000),
		Ordinal:     2,
		NameCell:    "맛집",
	}, rows[0])
	assert.Equal(t, "국밥집", rows[1].PlaceRaw)
	assert.Nil(t, rows[1].PersonCount)
	assert.Equal(t, int64(9000), *rows[1].AmountTotal)
	assert.Equal(t, 4, rows[1].Ordinal)
}

func TestRows_ExplicitColumns(t *testing.T) {
	e := NewExtractor(nil, nil)
	grid := [][]string{
		{"상호", "주소", "금액"},
		{"맛집", "관악구 관악로 100", "50,000"},
		{"", "관악구 관악로 200", "10,000"},
	}
	schema, ok := e.Detector().Detect(grid)
	require.True(t, ok)

	rows := e.Rows(grid, schema)
	require.Len(t, rows, 2)
	assert.Equal(t, "맛집 (관악구 관악로 100)", rows[0].PlaceRaw)
	assert.True(t, rows[0].FromAddressColumn)
	assert.Equal(t, "관악구 관악로 100", rows[0].AddressCell)
	assert.Equal(t, "관악구 관악로 200", rows[1].PlaceRaw)
	assert.False(t, rows[1].FromAddressColumn)
}

func TestFromGrid_Resegment(t *testing.T) {
	e := NewExtractor(nil, nil)
	grid := make([][]string, 31)
	grid = append(grid,
		[]string{"장소  인원  금액"},
		[]string{"맛집  3  30,000"},
	)

	rows, strategy := e.FromGrid(grid)
	assert.Equal(t, StrategyResegment, strategy)
	require.Len(t, rows, 1)
	assert.Equal(t, "맛집", rows[0].PlaceRaw)
	assert.Equal(t, 3, *rows[0].PersonCount)
	assert.Equal(t, int64(30000), *rows[0].AmountTotal)
}

func TestFromGrid_NoHeader(t *testing.T) {
	rows, strategy := NewExtractor(nil, nil).FromGrid([][]string{{"a", "b"}})
	assert.Equal(t, StrategyNone, strategy)
	assert.Empty(t, rows)

	rows, strategy = NewExtractor(nil, nil).FromGrid(nil)
	assert.Equal(t, StrategyNone, strategy)
	assert.Empty(t, rows)
}

func TestNumberParsing(t *testing.T) {
	assert.Nil(t, toInt64("없음"))
	assert.Equal(t, int64(1234567), *toInt64("₩1,234,567"))
	assert.Nil(t, toInt64("99999999999999999999"))
	assert.Nil(t, toInt("9999999999"))
	assert.Equal(t, 12, *toInt("12명"))
}

func TestLooksLikeGarbage(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "", want: true},
		{in: "12 3400 5600", want: true},
		{in: "A 1234", want: true},
		{in: "2024/01/02", want: true},
		{in: "맛집", want: false},
		{in: "관악로 100", want: false},
		{in: "맛집 관악구 관악로 100", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeGarbage(tt.in))
		})
	}
}
