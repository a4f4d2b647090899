package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPairsUpAndDown(t *testing.T) {
	up, err := List(Up)
	require.NoError(t, err)
	down, err := List(Down)
	require.NoError(t, err)

	require.Len(t, up, len(down))
	for i := range up {
		assert.Equal(t, up[i].Version, down[i].Version)
	}
}

func TestPendingURLStatusMigration(t *testing.T) {
	up, err := List(Up)
	require.NoError(t, err)
	require.NotEmpty(t, up)
	assert.Equal(t, "001_add_separate_url_pending_status", up[0].Version)

	down, err := List(Down)
	require.NoError(t, err)

	for _, col := range []string{
		"pending_url1_status", "pending_url2_status", "pending_url3_status",
		"pending_url1_submitted_at", "pending_url2_submitted_at", "pending_url3_submitted_at",
	} {
		assert.Contains(t, up[0].SQL, "ADD COLUMN IF NOT EXISTS "+col)
		assert.Contains(t, down[0].SQL, "DROP COLUMN IF EXISTS "+col)
	}
}
