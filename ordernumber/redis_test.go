package ordernumber

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCounter(t *testing.T) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCounter(client), mr
}

func TestRedisCounter(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCounter(t)

	v, err := c.CurrentCounter(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = c.IncrementCounter(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, redisTTL, mr.TTL("dserve:order-seq:2024-06-01"))

	require.NoError(t, c.RaiseCounter(ctx, "2024-06-01", 20))
	v, err = c.IncrementCounter(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(21), v)

	require.NoError(t, c.RaiseCounter(ctx, "2024-06-01", 5))
	v, err = c.CurrentCounter(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(21), v, "raise never lowers")

	mr.FastForward(49 * time.Hour)
	v, err = c.CurrentCounter(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Zero(t, v, "keys expire")
}

func TestSequencerOverRedis(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCounter(t)
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	seq := NewSequencer(c, func() time.Time { return clock })

	for i := 1; i <= 3; i++ {
		n, err := seq.Next(ctx, clock)
		require.NoError(t, err)
		assert.Equal(t, Format(int64(i)), n.String())
	}
	highest, next, err := seq.PeekNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), highest)
	assert.Equal(t, "#4", next)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = DialRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
