package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestDB_AppliesSchema(t *testing.T) {
	db := NewTestDB(t, "snapshots")

	var n int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n))
	assert.Zero(t, n)
}

func TestNewTestGrid(t *testing.T) {
	g := NewTestGrid(t)
	assert.Equal(t, []int{2, 3}, g.Shape())
	assert.Equal(t, 5.0, g.At(0, 1))
}
