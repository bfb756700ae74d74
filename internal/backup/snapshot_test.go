package backup_test

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myceliumfarm/mycelium/internal/backup"
	"github.com/myceliumfarm/mycelium/internal/testutil"
)

func TestSnapshot_DumpsBusinessTables(t *testing.T) {
	db := testutil.SetupTestDB(t)

	testutil.SeedCustomer(t, db, "c1", "김철수")
	_, err := db.Exec(
		`INSERT INTO customer_ledger (customer_id, transaction_date, transaction_type, amount)
		 VALUES ('c1', '2024-01-10', '매출', 3000)`)
	require.NoError(t, err)

	flag := backup.NewFlag()
	runner := backup.NewRunner(db, flag, t.TempDir(), time.Minute)

	info, err := runner.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Positive(t, info.SizeBytes)
	assert.Contains(t, info.Path, "auto_backup_")

	f, err := os.Open(info.Path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var dump map[string][]map[string]any
	require.NoError(t, json.NewDecoder(gz).Decode(&dump))

	require.Contains(t, dump, "customers")
	require.Contains(t, dump, "customer_ledger")
	require.Contains(t, dump, "settings")

	require.Len(t, dump["customers"], 1)
	assert.Equal(t, "김철수", dump["customers"][0]["customer_name"])
	require.Len(t, dump["customer_ledger"], 1)
	assert.Equal(t, float64(3000), dump["customer_ledger"][0]["amount"])

	last := runner.Last()
	require.NotNil(t, last)
	assert.Equal(t, info.Path, last.Path)
}
