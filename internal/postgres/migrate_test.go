package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/0001_create_invoices.up.sql", names[0])

	var buf bytes.Buffer
	require.NoError(t, WriteMigrations(&buf))
	assert.Contains(t, buf.String(), "CREATE TABLE IF NOT EXISTS invoices")
	assert.Contains(t, buf.String(), "idx_invoices_invoice_number")
	assert.Contains(t, buf.String(), "invoice_counters")
}
