// README: Tests for the geo candidate pre-filter and row decoding.
package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/types"
)

// fakeGeoRedis is a double for the redis subset the pre-filter uses.
type fakeGeoRedis struct {
	near      []string
	searchErr error
	added     []string
	removed   []string
}

func (f *fakeGeoRedis) GeoAdd(ctx context.Context, _ string, locs ...*redis.GeoLocation) *redis.IntCmd {
	for _, l := range locs {
		f.added = append(f.added, l.Name)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(locs)))
	return cmd
}

func (f *fakeGeoRedis) GeoSearch(ctx context.Context, _ string, _ *redis.GeoSearchQuery) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	if f.searchErr != nil {
		cmd.SetErr(f.searchErr)
		return cmd
	}
	cmd.SetVal(f.near)
	return cmd
}

func (f *fakeGeoRedis) ZRem(ctx context.Context, _ string, members ...interface{}) *redis.IntCmd {
	for _, m := range members {
		if s, ok := m.(string); ok {
			f.removed = append(f.removed, s)
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(members)))
	return cmd
}

func geoTrip(id types.ID, lat, lng float64) Trip {
	return Trip{ID: id, UserID: "u-" + id, Source: &types.Point{Lat: lat, Lng: lng}}
}

func TestPrefilter_EmptyIndexKeepsAllCandidates(t *testing.T) {
	// A key redis has never seen answers GEOSEARCH with an empty array and
	// no error. That must not drop anything, or a perfect match made before
	// the index was ever written would never be scored.
	store := &PGStore{redis: &fakeGeoRedis{near: nil}}
	newTrip := geoTrip("t-new", 48.86, 2.35)
	twin := geoTrip("t-twin", 48.86, 2.35)
	unplaced := Trip{ID: "t-unplaced", UserID: "u3"}

	out := store.prefilter(context.Background(), newTrip, []Trip{twin, unplaced})

	require.Len(t, out, 2)
	assert.Equal(t, types.ID("t-twin"), out[0].ID)
	assert.Equal(t, types.ID("t-unplaced"), out[1].ID)
}

func TestPrefilter_IndexWithoutSelfKeepsAllCandidates(t *testing.T) {
	// The new trip is the center of the search, so its absence means the
	// index never recorded it and cannot be trusted to narrow the set.
	store := &PGStore{redis: &fakeGeoRedis{near: []string{"t-other"}}}
	newTrip := geoTrip("t-new", 48.86, 2.35)
	far := geoTrip("t-far", 41.9, 12.5)

	out := store.prefilter(context.Background(), newTrip, []Trip{far})

	require.Len(t, out, 1)
	assert.Equal(t, types.ID("t-far"), out[0].ID)
}

func TestPrefilter_DropsCandidatesOutsideIndexRadius(t *testing.T) {
	store := &PGStore{redis: &fakeGeoRedis{near: []string{"t-new", "t-close"}}}
	newTrip := geoTrip("t-new", 48.86, 2.35)
	nearby := geoTrip("t-close", 48.9, 2.4)
	far := geoTrip("t-far", 41.9, 12.5)
	unplaced := Trip{ID: "t-unplaced", UserID: "u4"}

	out := store.prefilter(context.Background(), newTrip, []Trip{nearby, far, unplaced})

	require.Len(t, out, 2)
	assert.Equal(t, types.ID("t-close"), out[0].ID)
	assert.Equal(t, types.ID("t-unplaced"), out[1].ID)
}

func TestPrefilter_SearchErrorFallsBackToFullScan(t *testing.T) {
	store := &PGStore{redis: &fakeGeoRedis{searchErr: errors.New("redis down")}}
	newTrip := geoTrip("t-new", 48.86, 2.35)
	far := geoTrip("t-far", 41.9, 12.5)

	out := store.prefilter(context.Background(), newTrip, []Trip{far})

	require.Len(t, out, 1)
}

func TestPrefilter_NoRedisOrNoSourceIsPassthrough(t *testing.T) {
	far := geoTrip("t-far", 41.9, 12.5)

	noRedis := &PGStore{}
	assert.Len(t, noRedis.prefilter(context.Background(), geoTrip("t-new", 48.86, 2.35), []Trip{far}), 1)

	withRedis := &PGStore{redis: &fakeGeoRedis{}}
	unplacedNew := Trip{ID: "t-new", UserID: "u1"}
	assert.Len(t, withRedis.prefilter(context.Background(), unplacedNew, []Trip{far}), 1)
}

func TestIndexTripSource_RoundTrip(t *testing.T) {
	fake := &fakeGeoRedis{}
	store := &PGStore{redis: fake}

	src := &types.Point{Lat: 48.86, Lng: 2.35}
	require.NoError(t, store.IndexTripSource(context.Background(), "t1", src))
	require.NoError(t, store.IndexTripSource(context.Background(), "t2", nil))
	require.NoError(t, store.RemoveTripSource(context.Background(), "t1"))

	assert.Equal(t, []string{"t1"}, fake.added)
	assert.Equal(t, []string{"t1"}, fake.removed)
}

func TestDecodeGeometry(t *testing.T) {
	pts, err := decodeGeometry([]byte(`[{"lat":1,"lng":2},{"lat":3,"lng":4}]`))
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 3.0, pts[1].Lat)

	pts, err = decodeGeometry(nil)
	require.NoError(t, err)
	assert.Nil(t, pts)

	_, err = decodeGeometry([]byte(`{"not":"a list"`))
	assert.Error(t, err)
}
