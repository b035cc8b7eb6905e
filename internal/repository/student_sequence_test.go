package repository

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStudentSequencePerCenter(t *testing.T) {
	ctx := context.Background()
	seq := NewMemoryStudentSequence()

	first, err := seq.Next(ctx, "NGP-C1")
	require.NoError(t, err)
	second, err := seq.Next(ctx, "NGP-C1")
	require.NoError(t, err)
	other, err := seq.Next(ctx, "MDA-C1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(1), other)
}

func TestRedisStudentSequenceWithoutClient(t *testing.T) {
	seq := NewRedisStudentSequence(nil, nil)
	n, err := seq.Next(context.Background(), "NGP-C1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStudentSequenceFallsBackWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	seq := NewRedisStudentSequence(client, nil)

	n, err := seq.Next(context.Background(), "NGP-C1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
