package stats

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRecorder_ServedAndCount(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	rec := NewRedisRecorder(client, "test:served:")
	ctx := context.Background()

	n, err := rec.Count(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	require.NoError(t, rec.Served(ctx, "doc-1"))
	require.NoError(t, rec.Served(ctx, "doc-1"))
	require.NoError(t, rec.Served(ctx, "doc-2"))

	n, err = rec.Count(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	v, err := m.Get("test:served:doc-2")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	require.NoError(t, rec.Forget(ctx, "doc-1"))
	n, err = rec.Count(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestNop(t *testing.T) {
	var rec Recorder = Nop{}
	require.NoError(t, rec.Served(context.Background(), "x"))
	n, err := rec.Count(context.Background(), "x")
	require.NoError(t, err)
	require.Zero(t, n)
}
