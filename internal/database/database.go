package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"foncier/server/internal/loader"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// rawColumns are the persisted DVF columns, kept under their upstream
// names so the cleaning step sees the same schema as the CSV dump.
var rawColumns = []string{
	loader.ColMutationID,
	loader.ColDate,
	loader.ColPrice,
	loader.ColArea,
	loader.ColType,
	loader.ColDepartment,
	loader.ColCommune,
	loader.ColLatitude,
	loader.ColLongitude,
}

// RawColumns returns the persisted column names, in select order.
func RawColumns() []string {
	cols := make([]string, len(rawColumns))
	copy(cols, rawColumns)
	return cols
}

// GetAllRawRecords streams every stored transaction back as raw records
// for the cleaning step. Values are returned exactly as ingested.
func (d *Database) GetAllRawRecords() ([]loader.RawRecord, error) {
	query := `
        SELECT
            id_mutation,
            COALESCE(date_mutation, '') as date_mutation,
            COALESCE(valeur_fonciere, '') as valeur_fonciere,
            COALESCE(surface_reelle_bati, '') as surface_reelle_bati,
            COALESCE(type_local, '') as type_local,
            COALESCE(code_departement, '') as code_departement,
            COALESCE(code_commune, '') as code_commune,
            COALESCE(latitude, '') as latitude,
            COALESCE(longitude, '') as longitude
        FROM transactions
        ORDER BY date_mutation, id_mutation
    `

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []loader.RawRecord
	for rows.Next() {
		var mutationID, date, price, area, propertyType string
		var department, commune, latitude, longitude string

		err := rows.Scan(
			&mutationID,
			&date,
			&price,
			&area,
			&propertyType,
			&department,
			&commune,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		records = append(records, loader.RawRecord{
			loader.ColMutationID: mutationID,
			loader.ColDate:       date,
			loader.ColPrice:      price,
			loader.ColArea:       area,
			loader.ColType:       propertyType,
			loader.ColDepartment: department,
			loader.ColCommune:    commune,
			loader.ColLatitude:   latitude,
			loader.ColLongitude:  longitude,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return records, nil
}

// CountTransactions returns the number of stored raw transactions.
func (d *Database) CountTransactions() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	return d.db.Close()
}
