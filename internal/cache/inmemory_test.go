package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newTestCache(enabled bool) Cache {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = enabled
	cfg.Cache.Expiration = time.Minute
	return NewInMemoryCache(cfg, logger.NewNopLogger())
}

func TestInMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(true)

	key := GenerateKey(PrefixInvoice, "inv_1")
	assert.Equal(t, "invoice:v1::inv_1", key)

	c.Set(ctx, key, "value", 0)
	got, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "value", got)

	c.Delete(ctx, key)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestInMemoryCache_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(true)

	c.Set(ctx, GenerateKey(PrefixInvoice, "a"), 1, 0)
	c.Set(ctx, GenerateKey(PrefixInvoice, "b"), 2, 0)
	c.Set(ctx, "other:a", 3, 0)

	c.DeleteByPrefix(ctx, PrefixInvoice)

	_, ok := c.Get(ctx, GenerateKey(PrefixInvoice, "a"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, GenerateKey(PrefixInvoice, "b"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, "other:a")
	assert.True(t, ok)

	c.Flush(ctx)
	_, ok = c.Get(ctx, "other:a")
	assert.False(t, ok)
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(false)

	c.Set(ctx, "k", "v", 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
