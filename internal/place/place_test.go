package place

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAddress(t *testing.T) {
	tests := []struct {
		in        string
		confident bool
	}{
		{in: "관악로17길 13", confident: true},
		{in: "서울시 관악구 관악로 100", confident: true},
		{in: "봉천동 123-4번지", confident: true},
		{in: "본점", confident: false},
		{in: "할매국밥", confident: false},
		{in: "", confident: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			score := ScoreAddress(tt.in)
			if tt.confident {
				assert.GreaterOrEqual(t, score, ConfidentScore)
			} else {
				assert.Less(t, score, ConfidentScore)
			}
			assert.Equal(t, tt.confident, IsConfidentAddress(tt.in))
		})
	}
}

func TestScore_PenaltyKeywords(t *testing.T) {
	assert.Equal(t, ScoreAddress("관악로 100")-2, ScoreAddress("관악로 100 본점"))
}

func TestQualifier_Clean(t *testing.T) {
	q := NewQualifier(nil)
	tests := []struct {
		in   string
		want string
	}{
		{in: "주식회사 맛집", want: "맛집"},
		{in: "맛집(주)", want: "맛집"},
		{in: "㈜맛집", want: "맛집"},
		{in: "(맛집)", want: "맛집"},
		{in: "맛집(본점)", want: "맛집"},
		{in: "맛집 - 본점", want: "맛집"},
		{in: "맛집 Tel: 02-123-4567", want: "맛집"},
		{in: "맛집_20240101", want: "맛집"},
		{in: "맛집 ver2.1", want: "맛집"},
		{in: "12345", want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Clean(tt.in))
		})
	}
}

func TestQualifier_Filters(t *testing.T) {
	q := NewQualifier(nil)
	assert.True(t, q.IsEventBooth("홍보부스"))
	assert.False(t, q.IsEventBooth(""))
	assert.True(t, q.IsNonFood("관악주차장"))
	assert.False(t, q.IsNonFood("할매국밥"))
	assert.True(t, q.LooksLikeFoodPlace("할매국밥"))
	assert.False(t, q.LooksLikeFoodPlace("축제 운영본부"))
	assert.False(t, q.LooksLikeFoodPlace(""))
}

func TestSplitter_Split(t *testing.T) {
	s := NewSplitter(nil)
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantAddr string
	}{
		{name: "bracketed name", raw: "[맛집] 서울시 관악구 관악로 100", wantName: "맛집", wantAddr: "서울시 관악구 관악로 100"},
		{name: "parenthetical address", raw: "맛집 (관악구 관악로 100)", wantName: "맛집", wantAddr: "관악구 관악로 100"},
		{name: "parenthetical name", raw: "관악구 관악로 100 (맛집)", wantName: "맛집", wantAddr: "관악구 관악로 100"},
		{name: "tab gap", raw: "맛집\t관악구 관악로 100", wantName: "맛집", wantAddr: "관악구 관악로 100"},
		{name: "separator", raw: "맛집 / 관악구 관악로 100", wantName: "맛집", wantAddr: "관악구 관악로 100"},
		{name: "address only", raw: "서울시 관악구 관악로 100", wantAddr: "서울시 관악구 관악로 100"},
		{name: "name only", raw: "주식회사 할매국밥", wantName: "할매국밥"},
		{name: "event booth", raw: "홍보부스 운영"},
		{name: "empty", raw: "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, addr := s.Split(tt.raw)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantAddr, addr)
		})
	}
}
