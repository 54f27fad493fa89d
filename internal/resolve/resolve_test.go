package resolve

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/naver"
)

type fakeGeocodeAPI struct {
	mu       sync.Mutex
	queries  []string
	results  map[string]*naver.GeocodeResponse
	failures int
}

func (f *fakeGeocodeAPI) Configured() bool { return true }

func (f *fakeGeocodeAPI) Geocode(_ context.Context, q string) (*naver.GeocodeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.failures > 0 {
		f.failures--
		return nil, &naver.StatusError{Code: http.StatusServiceUnavailable}
	}
	if r, ok := f.results[q]; ok {
		return r, nil
	}
	return &naver.GeocodeResponse{Status: "OK"}, nil
}

func geocodeHit(addr, x, y string) *naver.GeocodeResponse {
	return &naver.GeocodeResponse{Addresses: []naver.GeocodeAddress{
		{RoadAddress: addr, X: naver.FlexString(x), Y: naver.FlexString(y)},
	}}
}

func TestGeocoder_RegionHintsAndCache(t *testing.T) {
	api := &fakeGeocodeAPI{results: map[string]*naver.GeocodeResponse{
		"관악구 맛집": geocodeHit("서울특별시 관악구 관악로 100", "126.95", "37.48"),
	}}
	g, err := NewGeocoder(api, common.GeocodeConfig{RegionHints: []string{"서울특별시", "관악구"}, CacheSize: 8}, nil)
	require.NoError(t, err)

	loc := g.Geocode(context.Background(), "맛집")
	assert.True(t, loc.Resolved())
	assert.Equal(t, "서울특별시 관악구 관악로 100", loc.Address)
	assert.Equal(t, 37.48, loc.Lat)
	assert.Equal(t, 126.95, loc.Lng)
	assert.Equal(t, []string{"서울특별시 맛집", "관악구 맛집"}, api.queries)

	again := g.Geocode(context.Background(), "맛집")
	assert.Equal(t, loc, again)
	assert.Len(t, api.queries, 2)
	hits, misses := g.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestGeocoder_Unconfigured(t *testing.T) {
	g, err := NewGeocoder(nil, common.GeocodeConfig{}, nil)
	require.NoError(t, err)
	loc := g.Geocode(context.Background(), "맛집")
	assert.False(t, loc.Resolved())
	assert.True(t, entity.IsSentinel(loc.Lat, loc.Lng))
}

func TestGeocoder_RetriesTransientFailures(t *testing.T) {
	api := &fakeGeocodeAPI{failures: 1, results: map[string]*naver.GeocodeResponse{
		"맛집": geocodeHit("서울 관악구", "126.9", "37.4"),
	}}
	g, err := NewGeocoder(api, common.GeocodeConfig{Retries: 2, Timeout: time.Second}, nil)
	require.NoError(t, err)

	loc := g.Geocode(context.Background(), "맛집")
	assert.True(t, loc.Resolved())
	assert.Len(t, api.queries, 2)
}

func TestGeocoder_TransientFailureNotCached(t *testing.T) {
	api := &fakeGeocodeAPI{failures: 1, results: map[string]*naver.GeocodeResponse{
		"맛집": geocodeHit("서울 관악구", "126.9", "37.4"),
	}}
	g, err := NewGeocoder(api, common.GeocodeConfig{Retries: 0}, nil)
	require.NoError(t, err)

	assert.False(t, g.Geocode(context.Background(), "맛집").Resolved())
	assert.True(t, g.Geocode(context.Background(), "맛집").Resolved())
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name, place, address, want string
	}{
		{"no address", "맛집", "", "맛집"},
		{"stops at road", "맛집", "경기도 화성시 동탄순환대로 567-31", "맛집 화성시 동탄순환대로"},
		{"caps fragments", "맛집", "서울특별시 관악구 봉천동 관악로 100", "맛집 서울특별시 관악구 봉천동"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.place, tt.address))
		})
	}
}

func TestChooseBest(t *testing.T) {
	near := naver.LocalItem{Title: "<b>맛집</b> 관악점", Category: "한식>백반", MapX: "1269500000", MapY: "374800000"}
	nearOther := naver.LocalItem{Title: "다른집", Category: "중식", MapX: "1269501000", MapY: "374800000"}
	far := naver.LocalItem{Title: "맛집", Category: "일식", MapX: "1270500000", MapY: "375800000"}

	t.Run("drops candidates beyond radius", func(t *testing.T) {
		best, ok := ChooseBest([]naver.LocalItem{far, nearOther}, "맛집", 37.48, 126.95, 300)
		require.True(t, ok)
		assert.Equal(t, "다른집", best.Title)
	})
	t.Run("prefers name score", func(t *testing.T) {
		best, ok := ChooseBest([]naver.LocalItem{nearOther, near}, "맛집", 37.48, 126.95, 300)
		require.True(t, ok)
		assert.Equal(t, near.Title, best.Title)
	})
	t.Run("sentinel skips distance filter", func(t *testing.T) {
		best, ok := ChooseBest([]naver.LocalItem{far}, "맛집", 0, 0, 300)
		require.True(t, ok)
		assert.Equal(t, "일식", best.Category)
	})
	t.Run("candidates without coordinates never win", func(t *testing.T) {
		bare := naver.LocalItem{Title: "맛집", Category: "음식점>한식"}
		_, ok := ChooseBest([]naver.LocalItem{bare}, "맛집", 0, 0, 300)
		assert.False(t, ok)

		best, ok := ChooseBest([]naver.LocalItem{bare, nearOther}, "맛집", 0, 0, 300)
		require.True(t, ok)
		assert.Equal(t, "다른집", best.Title)
	})
	t.Run("nothing survives", func(t *testing.T) {
		_, ok := ChooseBest([]naver.LocalItem{far}, "맛집", 37.48, 126.95, 300)
		assert.False(t, ok)
	})
	t.Run("reverse containment scores lower", func(t *testing.T) {
		short := naver.LocalItem{Title: "맛집", MapX: "1269500000", MapY: "374800000"}
		long := naver.LocalItem{Title: "관악 맛집 본점", MapX: "1269600000", MapY: "374800000"}
		best, ok := ChooseBest([]naver.LocalItem{short, long}, "관악맛집", 37.48, 126.95, 2000)
		require.True(t, ok)
		assert.Equal(t, long.Title, best.Title)
	})
}

type fakeLocalAPI struct {
	calls int
	resp  *naver.LocalSearchResponse
}

func (f *fakeLocalAPI) Configured() bool { return true }

func (f *fakeLocalAPI) Search(context.Context, string, int) (*naver.LocalSearchResponse, error) {
	f.calls++
	return f.resp, nil
}

func TestLocalSearch_ResolveCategory(t *testing.T) {
	api := &fakeLocalAPI{resp: &naver.LocalSearchResponse{Items: []naver.LocalItem{
		{Title: "<b>맛집</b>", Category: "음식점>카페,디저트", Telephone: "02-123-4567", MapX: "1269500000", MapY: "374800000"},
	}}}
	ls, err := NewLocalSearch(api, nil, common.LocalSearchConfig{CacheSize: 4}, nil)
	require.NoError(t, err)

	cat, ok := ls.ResolveCategory(context.Background(), "맛집", 37.48, 126.95, "서울 관악구", 300)
	require.True(t, ok)
	assert.Equal(t, "카페", cat)

	res := ls.Lookup(context.Background(), "맛집", 37.48, 126.95, "서울 관악구", 300)
	assert.Equal(t, LookupOK, res.Status)
	assert.Equal(t, "02-123-4567", res.Phone)
	assert.Equal(t, 1, api.calls)
}

func TestLocalSearch_NotFound(t *testing.T) {
	api := &fakeLocalAPI{resp: &naver.LocalSearchResponse{}}
	ls, err := NewLocalSearch(api, nil, common.LocalSearchConfig{}, nil)
	require.NoError(t, err)

	res := ls.Lookup(context.Background(), "맛집", 0, 0, "", 300)
	assert.Equal(t, LookupNotFound, res.Status)
}
