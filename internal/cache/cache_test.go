package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	require.NoError(t, InitRedis(&config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    port,
		Prefix:  "shoptest",
	}))
	t.Cleanup(func() {
		_ = InitRedis(&config.RedisConfig{Enabled: false})
	})
	return mr
}

func TestDisabledCacheIsNoop(t *testing.T) {
	require.NoError(t, InitRedis(&config.RedisConfig{Enabled: false}))
	ctx := context.Background()

	assert.False(t, Enabled())
	assert.Nil(t, Client())
	assert.Nil(t, NewAutomaticDiscountStore())
	assert.NoError(t, SetJSON(ctx, "k", "v", time.Minute))

	var dest string
	hit, err := GetJSON(ctx, "k", &dest)
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestJSONRoundTripWithPrefix(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "greeting", map[string]string{"de": "Hallo"}, time.Minute))
	assert.True(t, mr.Exists("shoptest:greeting"))
	assert.Equal(t, time.Minute, mr.TTL("shoptest:greeting"))

	var got map[string]string
	hit, err := GetJSON(ctx, "greeting", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Hallo", got["de"])

	require.NoError(t, Del(ctx, "greeting"))
	hit, err = GetJSON(ctx, "greeting", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAutomaticDiscountStore(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()
	store := NewAutomaticDiscountStore()
	require.NotNil(t, store)

	ids, ok, err := store.LoadAutomaticDiscountIDs(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ids)

	require.NoError(t, store.SaveAutomaticDiscountIDs(ctx, nil, time.Hour))
	ids, ok, err = store.LoadAutomaticDiscountIDs(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "an empty result is still a cache hit")
	assert.Empty(t, ids)

	require.NoError(t, store.SaveAutomaticDiscountIDs(ctx, []uint{4, 8}, time.Hour))
	ids, ok, err = store.LoadAutomaticDiscountIDs(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{4, 8}, ids)

	require.NoError(t, store.ClearAutomaticDiscountIDs(ctx))
	_, ok, err = store.LoadAutomaticDiscountIDs(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthStateSnapshots(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()
	basket := uint(12)
	user := &models.User{ID: 3, Status: "active", TokenVersion: 2, BasketID: &basket}

	require.NoError(t, SetUserAuthState(ctx, BuildUserAuthState(user)))
	assert.Equal(t, authStateCacheTTL, mr.TTL("shoptest:auth:user:3"))

	state, hit, err := GetUserAuthState(ctx, 3)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, uint(12), state.BasketID)
	assert.Equal(t, uint64(2), state.TokenVersion)

	require.NoError(t, DelUserAuthState(ctx, 3))
	_, hit, err = GetUserAuthState(ctx, 3)
	require.NoError(t, err)
	assert.False(t, hit)

	invalidBefore := time.Unix(1700000000, 0)
	admin := &models.Admin{ID: 1, Username: "admin", IsSuper: true, TokenInvalidBefore: &invalidBefore}
	require.NoError(t, SetAdminAuthState(ctx, BuildAdminAuthState(admin)))
	adminState, hit, err := GetAdminAuthState(ctx, 1)
	require.NoError(t, err)
	require.True(t, hit)
	assert.True(t, adminState.IsSuper)
	assert.Equal(t, int64(1700000000), adminState.TokenInvalidBefore)

	assert.Nil(t, BuildUserAuthState(nil))
	assert.NoError(t, SetUserAuthState(ctx, nil))
}

func TestKeyAndPing(t *testing.T) {
	require.NoError(t, InitRedis(&config.RedisConfig{Enabled: false, Prefix: " eu "}))
	assert.Equal(t, "eu:rate:login", Key("rate", "login"))
	assert.Equal(t, "eu:auth:user:7", Key("auth", "user", 7))
	assert.Equal(t, "eu", Key(" "))
	assert.Equal(t, "disabled", Ping(context.Background()))

	require.NoError(t, InitRedis(nil))
	assert.Equal(t, "shop:discount:automatic", Key(automaticDiscountKey))

	mr := setupMiniredis(t)
	assert.Equal(t, "ok", Ping(context.Background()))
	mr.Close()
	assert.Equal(t, "down", Ping(context.Background()))
}
