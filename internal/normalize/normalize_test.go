package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

type subs map[string]string

func (s subs) Substitute(in string) string {
	if out, ok := s[in]; ok {
		return out
	}
	return in
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "full-width space", in: "  맛집　관악점  ", want: "맛집 관악점"},
		{name: "width folding", in: "ＡＢＣ１２３", want: "ABC123"},
		{name: "control characters", in: "맛\u0007집", want: "맛집"},
		{name: "line breaks collapse", in: "맛집\n\n관악구", want: "맛집 관악구"},
		{name: "brackets unify", in: "【맛집】 「관악」", want: "[맛집] [관악]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Text(got), "Text must be idempotent")
		})
	}
}

func TestNormalizer_Substitutes(t *testing.T) {
	n := New(subs{"장소명": "장소"})
	assert.Equal(t, "장소", n.Text("장소명"))
	assert.Equal(t, "장소명", Text("장소명"))
}

func TestNormalizer_SubstitutesAfterCleanup(t *testing.T) {
	n := New(subs{"장소명": "장소", "장소": "장소", "금액(원)": "금액"})
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "zero-width space", in: "장소\u200b명", want: "장소"},
		{name: "bell", in: "장소\a명", want: "장소"},
		{name: "soft hyphen", in: "장소\u00ad명", want: "장소"},
		{name: "full-width parens", in: "금액（원）", want: "금액"},
		{name: "untouched", in: "인원", want: "인원"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := n.Text(tt.in)
			assert.Equal(t, tt.want, once)
			assert.Equal(t, once, n.Text(once))
		})
	}
}

func TestKeepGaps(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tab survives", in: "맛집\t관악구   관악로", want: "맛집\t관악구  관악로"},
		{name: "line break becomes gap", in: "맛집\n관악구", want: "맛집  관악구"},
		{name: "single spaces untouched", in: " 맛집 관악구 ", want: "맛집 관악구"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeepGaps(tt.in))
		})
	}
}

func TestSplitGaps(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c d"}, SplitGaps("a\t b  c d"))
	assert.Nil(t, SplitGaps("   "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "가나", Truncate("가나다라", 2))
	assert.Equal(t, "가나", Truncate("가나", 5))
	assert.Equal(t, "", Truncate("가나", 0))
}

func TestSpaces(t *testing.T) {
	assert.Equal(t, "a b", Spaces(" a 　 b "))
}

func TestNormalizer_DefaultVocabularyIdempotent(t *testing.T) {
	n := New(vocab.Default())
	for _, in := range []string{"장소\u200b명", "장소\a명", "장소\u00ad명", "  사용　장소  ", "집행액(원)"} {
		once := n.Text(in)
		assert.Equal(t, once, n.Text(once), in)
	}
	assert.Equal(t, "장소", n.Text("장소\u200b명"))
}
