package upsert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/repository"
	"github.com/joseph-ayodele/restaurant-seeder/internal/repository/repotest"
)

func price(v int64) *int64 { return &v }

func newRepo(t *testing.T) *repository.RestaurantRepository {
	t.Helper()
	return repotest.Open(t).Restaurants()
}

func TestEngine_InsertWithPrice(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := NewEngine(nil)

	out, err := e.Apply(ctx, repo, entity.Observation{
		Name: "맛집", Address: "서울시 관악구 관악로 100", Price: price(50000), Fingerprint: "fp-1",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.OutcomeCreated, out)

	rec, err := repo.FindByNameAddress(ctx, "맛집", "서울시 관악구 관악로 100")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(50000), rec.Price)
	assert.Equal(t, int64(1), rec.PriceCount)
	assert.False(t, rec.HasCoordinates())
}

func TestEngine_InsertWithoutPriceLeavesStatsNil(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := NewEngine(nil).Apply(ctx, repo, entity.Observation{Name: "맛집"})
	require.NoError(t, err)

	rec, err := repo.FindByName(ctx, "맛집")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Nil(t, rec.PriceMin)
	assert.Nil(t, rec.PriceAvg)
	assert.Zero(t, rec.PriceCount)
}

func TestEngine_PriceAggregation(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := NewEngine(nil)

	obs := entity.Observation{Name: "맛집", Address: "서울시 관악구 관악로 100"}
	obs.Price, obs.Fingerprint = price(10000), "a"
	_, err := e.Apply(ctx, repo, obs)
	require.NoError(t, err)

	obs.Price, obs.Fingerprint = price(20000), "b"
	out, err := e.Apply(ctx, repo, obs)
	require.NoError(t, err)
	assert.Equal(t, constants.OutcomeUpdated, out)

	rec, err := repo.FindByNameAddress(ctx, obs.Name, obs.Address)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), *rec.PriceMin)
	assert.Equal(t, int64(20000), *rec.PriceMax)
	assert.Equal(t, int64(15000), *rec.PriceAvg)
	assert.Equal(t, int64(2), rec.PriceCount)
	assert.Equal(t, int64(20000), rec.Price)
}

func TestEngine_FingerprintFoldsOnce(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := NewEngine(nil)
	obs := entity.Observation{Name: "맛집", Price: price(10000), Fingerprint: "same"}

	_, err := e.Apply(ctx, repo, obs)
	require.NoError(t, err)
	out, err := e.Apply(ctx, repo, obs)
	require.NoError(t, err)
	assert.Equal(t, constants.OutcomeUnchanged, out)

	rec, err := repo.FindByName(ctx, "맛집")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.PriceCount)
}

func TestEngine_SentinelNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := NewEngine(nil)

	_, err := e.Apply(ctx, repo, entity.Observation{Name: "맛집", Address: "관악로 100", Lat: 37.48, Lng: 126.95})
	require.NoError(t, err)
	out, err := e.Apply(ctx, repo, entity.Observation{Name: "맛집", Address: "관악로 100"})
	require.NoError(t, err)
	assert.Equal(t, constants.OutcomeUnchanged, out)

	rec, err := repo.FindByNameAddress(ctx, "맛집", "관악로 100")
	require.NoError(t, err)
	assert.Equal(t, 37.48, rec.Lat)
	assert.Equal(t, 126.95, rec.Lng)
}

func TestEngine_FillsSentinelCoordinates(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := NewEngine(nil)

	_, err := e.Apply(ctx, repo, entity.Observation{Address: "관악로 100"})
	require.NoError(t, err)
	out, err := e.Apply(ctx, repo, entity.Observation{Address: "관악로 100", Lat: 37.48, Lng: 126.95})
	require.NoError(t, err)
	assert.Equal(t, constants.OutcomeUpdated, out)

	rec, err := repo.FindByAddress(ctx, "관악로 100")
	require.NoError(t, err)
	assert.True(t, rec.HasCoordinates())
}

func TestEngine_CategoryFirstValueWins(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	e := NewEngine(nil)

	_, err := e.Apply(ctx, repo, entity.Observation{Name: "맛집", Category: "한식"})
	require.NoError(t, err)
	out, err := e.Apply(ctx, repo, entity.Observation{Name: "맛집", Category: "중식", Phone: "02-000-0000"})
	require.NoError(t, err)
	assert.Equal(t, constants.OutcomeUpdated, out)

	rec, err := repo.FindByName(ctx, "맛집")
	require.NoError(t, err)
	assert.Equal(t, "한식", rec.Category)
	assert.Equal(t, "02-000-0000", rec.Phone)
}

func TestEngine_OverwritePolicy(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := NewEngine(nil).Apply(ctx, repo, entity.Observation{Name: "맛집", Category: "한식"})
	require.NoError(t, err)

	force := NewEngine(nil, WithPolicies(Policy{Field: FieldCategory, Kind: Overwrite}))
	out, err := force.Apply(ctx, repo, entity.Observation{Name: "맛집", Category: "중식"})
	require.NoError(t, err)
	assert.Equal(t, constants.OutcomeUpdated, out)

	rec, err := repo.FindByName(ctx, "맛집")
	require.NoError(t, err)
	assert.Equal(t, "중식", rec.Category)
}

func TestEngine_RejectsEmptyIdentity(t *testing.T) {
	out, err := NewEngine(nil).Apply(context.Background(), newRepo(t), entity.Observation{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, constants.OutcomeFailed, out)
}

func TestPolicy_Apply(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		rec     entity.Restaurant
		obs     entity.Observation
		changed bool
		check   func(t *testing.T, r entity.Restaurant)
	}{
		{
			name:    "coordinates keep stored value",
			policy:  Policy{Field: FieldCoordinates, Kind: FillIfSentinel},
			rec:     entity.Restaurant{Lat: 37.48, Lng: 126.95},
			obs:     entity.Observation{Lat: 37.5, Lng: 127.0},
			changed: false,
			check:   func(t *testing.T, r entity.Restaurant) { assert.Equal(t, 37.48, r.Lat) },
		},
		{
			name:    "phone fills empty",
			policy:  Policy{Field: FieldPhone, Kind: FillIfEmpty},
			obs:     entity.Observation{Phone: "02-1"},
			changed: true,
			check:   func(t *testing.T, r entity.Restaurant) { assert.Equal(t, "02-1", r.Phone) },
		},
		{
			name:    "empty incoming text is ignored",
			policy:  Policy{Field: FieldCategory, Kind: Overwrite},
			rec:     entity.Restaurant{Category: "한식"},
			changed: false,
			check:   func(t *testing.T, r entity.Restaurant) { assert.Equal(t, "한식", r.Category) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			assert.Equal(t, tt.changed, tt.policy.apply(&rec, incoming{obs: tt.obs}))
			tt.check(t, rec)
		})
	}
}

func TestEngine_MatchOrder(t *testing.T) {
	const addr = "서울시 관악구 관악로 100"

	t.Run("address only matches a named record", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		named := &entity.Restaurant{Name: "맛집", Address: addr}
		require.NoError(t, repo.Insert(ctx, named))

		out, err := NewEngine(nil).Apply(ctx, repo, entity.Observation{Address: addr, Price: price(9000), Fingerprint: "addr-only"})
		require.NoError(t, err)
		assert.Equal(t, constants.OutcomeUpdated, out)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		got, err := repo.Get(ctx, named.ID)
		require.NoError(t, err)
		assert.Equal(t, "맛집", got.Name)
		assert.Equal(t, int64(1), got.PriceCount)
	})

	t.Run("name only prefers the record without address", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		withAddr := &entity.Restaurant{Name: "맛집", Address: addr}
		require.NoError(t, repo.Insert(ctx, withAddr))
		nameOnly := &entity.Restaurant{Name: "맛집"}
		require.NoError(t, repo.Insert(ctx, nameOnly))

		out, err := NewEngine(nil).Apply(ctx, repo, entity.Observation{Name: "맛집", Price: price(7000), Fingerprint: "name-only"})
		require.NoError(t, err)
		assert.Equal(t, constants.OutcomeUpdated, out)

		got, err := repo.Get(ctx, nameOnly.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.PriceCount)
		other, err := repo.Get(ctx, withAddr.ID)
		require.NoError(t, err)
		assert.Zero(t, other.PriceCount)
	})

	t.Run("name only falls back to an addressed record", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		withAddr := &entity.Restaurant{Name: "맛집", Address: addr}
		require.NoError(t, repo.Insert(ctx, withAddr))

		out, err := NewEngine(nil).Apply(ctx, repo, entity.Observation{Name: "맛집", Price: price(7000), Fingerprint: "fallback"})
		require.NoError(t, err)
		assert.Equal(t, constants.OutcomeUpdated, out)
		got, err := repo.Get(ctx, withAddr.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.PriceCount)
	})

	t.Run("full key with another address creates", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		require.NoError(t, repo.Insert(ctx, &entity.Restaurant{Name: "맛집", Address: addr}))

		out, err := NewEngine(nil).Apply(ctx, repo, entity.Observation{Name: "맛집", Address: "서울시 관악구 관악로 200"})
		require.NoError(t, err)
		assert.Equal(t, constants.OutcomeCreated, out)
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
