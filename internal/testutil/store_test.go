package testutil

import (
	"context"
	"testing"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore[string]()

	require.NoError(t, store.Create(ctx, "a", "first"))

	err := store.Create(ctx, "a", "again")
	assert.True(t, ierr.IsAlreadyExists(err))
	assert.False(t, ierr.IsNotFound(err))

	item, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", item)

	_, err = store.Get(ctx, "missing")
	assert.True(t, ierr.IsNotFound(err))

	assert.True(t, ierr.IsNotFound(store.Update(ctx, "missing", "x")))
	require.NoError(t, store.Delete(ctx, "a"))
	assert.True(t, ierr.IsNotFound(store.Delete(ctx, "a")))
}
