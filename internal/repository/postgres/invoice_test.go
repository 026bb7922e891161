package postgres

import (
	"errors"
	"strings"
	"testing"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	t.Run("nil filter lists everything", func(t *testing.T) {
		query, args := buildListQuery(nil)
		assert.NotContains(t, query, "WHERE")
		assert.NotContains(t, query, "LIMIT")
		assert.True(t, strings.HasSuffix(query, "ORDER BY created_at DESC, id DESC"))
		assert.Empty(t, args)
	})

	t.Run("email with pagination", func(t *testing.T) {
		filter := types.NewInvoiceFilter()
		filter.CustomerEmail = "billing@acme.test"
		filter.Limit = lo.ToPtr(10)
		filter.Offset = lo.ToPtr(20)

		query, args := buildListQuery(filter)
		assert.Contains(t, query, "WHERE customer_email = $1")
		assert.Contains(t, query, "ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3")
		assert.Equal(t, []interface{}{"billing@acme.test", 10, 20}, args)
	})

	t.Run("zero offset is omitted", func(t *testing.T) {
		query, args := buildListQuery(types.NewInvoiceFilter())
		assert.Contains(t, query, "LIMIT $1")
		assert.NotContains(t, query, "OFFSET")
		assert.Equal(t, []interface{}{types.FILTER_DEFAULT_LIMIT}, args)
	})
}

type fakeResult struct {
	affected int64
	err      error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.affected, f.err }

func TestExpectOneRow(t *testing.T) {
	assert.NoError(t, expectOneRow(fakeResult{affected: 1}, "inv_1"))

	err := expectOneRow(fakeResult{affected: 0}, "inv_1")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	err = expectOneRow(fakeResult{err: errors.New("driver gone")}, "inv_1")
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))
}
