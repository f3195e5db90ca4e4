package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/career-compass/pkg/logger"
)

func TestRedisCache_NilClientBypasses(t *testing.T) {
	c := NewRedisCache(nil, 0, logger.NewNop())
	ctx := context.Background()

	assert.NoError(t, c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute))

	var out map[string]string
	hit, err := c.GetJSON(ctx, "k", &out)
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_UnreachableServerReportsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisCache(client, time.Minute, logger.NewNop())
	var out []string
	hit, err := c.GetJSON(context.Background(), "k", &out)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.True(t, c.warnedUnavailable.Load())
}
