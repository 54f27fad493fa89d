package tableschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	d := NewDetector(nil, nil)

	tests := []struct {
		name string
		grid [][]string
		ok   bool
		want Schema
	}{
		{
			name: "place column below a title",
			grid: [][]string{
				{"2024년 업무추진비 집행내역"},
				{"일자", "사용처", "인원", "금액"},
				{"1/2", "맛집", "3", "60,000"},
			},
			ok:   true,
			want: Schema{HeaderRow: 1, Place: 1, People: 2, Amount: 3, Name: 1, Address: -1},
		},
		{
			name: "explicit name and address columns",
			grid: [][]string{
				{"상호", "주소", "금액"},
				{"맛집", "관악구 관악로 100", "50,000"},
			},
			ok:   true,
			want: Schema{HeaderRow: 0, Place: 0, People: -1, Amount: 2, Name: 0, Address: 1},
		},
		{
			name: "full-width header text",
			grid: [][]string{
				{"사용　장소", "집행액(원)"},
			},
			ok:   true,
			want: Schema{HeaderRow: 0, Place: 0, People: -1, Amount: 1, Name: 0, Address: -1},
		},
		{
			name: "no header",
			grid: [][]string{{"a", "b"}, {"1", "2"}},
			ok:   false,
			want: Schema{HeaderRow: -1, Place: -1, People: -1, Amount: -1, Name: -1, Address: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Detect(tt.grid)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_OnlyScansLeadingRows(t *testing.T) {
	grid := make([][]string, ScanRows)
	for i := range grid {
		grid[i] = []string{"-"}
	}
	grid = append(grid, []string{"장소", "금액"})

	_, ok := NewDetector(nil, nil).Detect(grid)
	assert.False(t, ok)
}

func TestSchema_HasExplicitNameAndAddress(t *testing.T) {
	assert.True(t, Schema{Name: 0, Address: 1}.HasExplicitNameAndAddress())
	assert.False(t, Schema{Name: 0, Address: -1}.HasExplicitNameAndAddress())
}

func TestExplode(t *testing.T) {
	d := NewDetector(nil, nil)
	got := d.Explode([]string{"장소\n인원", "금액/비고", "a  b", "단일"})
	require.Len(t, got, 7)
	assert.Equal(t, []string{"장소", "인원", "금액", "비고", "a", "b", "단일"}, got)
}
