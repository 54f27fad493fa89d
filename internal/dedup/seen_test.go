package dedup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenSet_Add(t *testing.T) {
	s := NewSeenSet()
	assert.True(t, s.Add("맛집", "서울시 관악구 관악로 100"))
	assert.False(t, s.Add("맛집", "서울시 관악구 관악로 100"))
	assert.True(t, s.Add("맛집", ""))
	assert.True(t, s.Seen("맛집", ""))
	assert.Equal(t, 2, s.Len())
}

func TestSeenSet_TruncatesBeforeComparing(t *testing.T) {
	s := NewSeenSet()
	long := strings.Repeat("가", 64)
	assert.True(t, s.Add(long+"나", "addr"))
	assert.False(t, s.Add(long+"다", "addr"))
}
