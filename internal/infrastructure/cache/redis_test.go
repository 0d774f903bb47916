package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRedis_SelectsDBAndTimeouts(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := OpenRedis(mr.Addr(), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, 20, opts.PoolSize)

	require.NoError(t, client.Set(context.Background(), "idemp:lend:ping", "1", time.Minute).Err())
	assert.True(t, mr.DB(2).Exists("idemp:lend:ping"), "write must land in the selected db")
	assert.False(t, mr.DB(0).Exists("idemp:lend:ping"))
}

func TestOpenRedis_UnreachableHost(t *testing.T) {
	_, err := OpenRedis("redis.invalid:6379", 0)
	assert.Error(t, err)
}

func TestPing_FollowsServerState(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := OpenRedis(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	check := Ping(client)
	require.NoError(t, check(context.Background()))

	mr.Close()
	assert.Error(t, check(context.Background()))
}
