package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foncier/server/internal/loader"
)

func openTestDatabase(t *testing.T) (*Database, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dvf.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	return db, dbPath
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, _ := openTestDatabase(t)
	assert.NoError(t, db.RunMigrations())
}

func TestRawColumnsCoverMandatorySchema(t *testing.T) {
	// The columns handed to Clean on refresh must pass its schema check
	// even when the database is empty.
	_, _, err := loader.Clean(RawColumns(), nil, nil)
	assert.NoError(t, err)
}

func TestUpsertAndReadBack(t *testing.T) {
	db, dbPath := openTestDatabase(t)

	gormDB, err := NewGormDB(dbPath)
	require.NoError(t, err)

	batch := []*RawTransaction{
		{
			MutationID:   "2023-1",
			ParcelID:     "750560000A0001",
			Date:         "2023-03-15",
			Price:        "300000",
			BuiltArea:    "100",
			PropertyType: "Appartement",
			Department:   "75",
			Commune:      "75056",
		},
		{
			MutationID:   "2023-2",
			ParcelID:     "690010000B0002",
			Date:         "2023-03-16",
			Price:        "150000",
			BuiltArea:    "50",
			PropertyType: "Maison",
			Department:   "69",
			Commune:      "69001",
		},
	}
	require.NoError(t, UpsertRawTransactions(gormDB, batch))

	// Same keys again with a changed price: no duplicate row
	batch[0].Price = "320000"
	require.NoError(t, UpsertRawTransactions(gormDB, batch))

	count, err := db.CountTransactions()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := db.GetAllRawRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "320000", records[0][loader.ColPrice])

	// The stored rows clean into a two-row canonical table
	table, report, err := loader.Clean(RawColumns(), records, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 0, report.Rejected)
	assert.Equal(t, 3200.0, table.Rows[0].PricePerM2)
}

func TestUpsertEmptyBatchIsNoop(t *testing.T) {
	_, dbPath := openTestDatabase(t)
	gormDB, err := NewGormDB(dbPath)
	require.NoError(t, err)

	assert.NoError(t, UpsertRawTransactions(gormDB, nil))
}
