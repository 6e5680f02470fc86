package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_PairsUpAndDown(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	require.Len(t, ups, 3)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(FS, down)
		assert.NoError(t, err, "missing rollback for %s", up)
	}
}

func TestFS_CascadeTablesIndexed(t *testing.T) {
	data, err := fs.ReadFile(FS, "000002_create_billing.up.sql")
	require.NoError(t, err)
	sql := string(data)
	assert.Contains(t, sql, "ON bills (type, reference_id, year)")
	assert.Contains(t, sql, "ON payments (bill_id)")
	assert.Contains(t, sql, "ON bill_adjustments (target_type, target_id)")
}
