package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
)

func TestDefault_Loads(t *testing.T) {
	v := Default()
	require.NotNil(t, v)
	assert.Contains(t, v.EventKeywords, "부스")
	assert.Contains(t, v.Headers.Address, "주소")
	assert.NotEmpty(t, v.Categories)
	assert.Same(t, v, Default())
}

func TestLoad_MergesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("event_keywords: [행사]\n"), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"행사"}, v.EventKeywords)
	assert.Equal(t, Default().NonFoodKeywords, v.NonFoodKeywords)
	assert.NotEqual(t, Default().EventKeywords, v.EventKeywords)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("event_keywords: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	v, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), v)
}

func TestParse_CategoryTargets(t *testing.T) {
	v, err := Parse([]byte("categories:\n  - {match: 국밥, category: \" 한식 \"}\n"))
	require.NoError(t, err)
	require.Len(t, v.Categories, 1)
	assert.Equal(t, "한식", v.Categories[0].Category)

	_, err = Parse([]byte("categories:\n  - {match: 국밥, category: 국밥집}\n"))
	assert.ErrorIs(t, err, ErrUnknownCategory)

	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - {match: 국수, category: 면요리}\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDefault_CategoriesCanonical(t *testing.T) {
	canonical := constants.AsStringSlice()
	for _, rule := range Default().Categories {
		assert.Contains(t, canonical, rule.Category, rule.Match)
	}
}

func TestCanonicalCategory(t *testing.T) {
	v := Default()
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "음식점>카페,디저트", want: "카페", wantOK: true},
		{raw: "음식점>한식>국밥", want: "한식", wantOK: true},
		{raw: "음식점>술집", want: "주점", wantOK: true},
		{raw: "음식점>베트남음식", want: "베트남음식", wantOK: true},
		{raw: "음식점>동남아요리전문레스토랑체인", want: "동남아요리전문레스토", wantOK: true},
		{raw: "음식점", want: "", wantOK: false},
		{raw: "  ", want: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := v.CanonicalCategory(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchers(t *testing.T) {
	assert.Equal(t, "부스", FirstMatch("홍보 부스 운영", []string{"", "부스", "행사"}))
	assert.Equal(t, "", FirstMatch("", []string{"부스"}))
	assert.True(t, ContainsAny("행사장", []string{"행사"}))
	assert.False(t, ContainsAny("맛집", []string{"행사"}))
	assert.True(t, ContainsAnyFold("Coffee BAR", []string{"bar"}))
}

func TestSubstitute(t *testing.T) {
	assert.Equal(t, "장소", Default().Substitute("장소명"))
}
