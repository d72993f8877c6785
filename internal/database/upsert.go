package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"foncier/server/internal/loader"
)

// RawTransaction mirrors one row of the DVF dump for the ingest path.
type RawTransaction struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	MutationID   string `gorm:"column:id_mutation;uniqueIndex:idx_mutation_parcel"`
	ParcelID     string `gorm:"column:id_parcelle;uniqueIndex:idx_mutation_parcel"`
	Date         string `gorm:"column:date_mutation"`
	Price        string `gorm:"column:valeur_fonciere"`
	BuiltArea    string `gorm:"column:surface_reelle_bati"`
	PropertyType string `gorm:"column:type_local"`
	Department   string `gorm:"column:code_departement"`
	Commune      string `gorm:"column:code_commune"`
	Latitude     string `gorm:"column:latitude"`
	Longitude    string `gorm:"column:longitude"`
}

func (RawTransaction) TableName() string {
	return "transactions"
}

// Record converts the stored row back into the raw-record shape the
// cleaning step consumes.
func (t RawTransaction) Record() loader.RawRecord {
	return loader.RawRecord{
		loader.ColMutationID: t.MutationID,
		loader.ColDate:       t.Date,
		loader.ColPrice:      t.Price,
		loader.ColArea:       t.BuiltArea,
		loader.ColType:       t.PropertyType,
		loader.ColDepartment: t.Department,
		loader.ColCommune:    t.Commune,
		loader.ColLatitude:   t.Latitude,
		loader.ColLongitude:  t.Longitude,
	}
}

// NewGormDB opens a gorm connection used by the batch ingest path. The
// read path keeps plain database/sql.
func NewGormDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}
	return db, nil
}

// UpsertRawTransactions inserts a batch of raw transactions, replacing
// rows that share the same mutation and parcel ids so re-running an
// ingest never duplicates data.
func UpsertRawTransactions(tx *gorm.DB, batch []*RawTransaction) error {
	if len(batch) == 0 {
		return nil
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id_mutation"}, {Name: "id_parcelle"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"date_mutation",
			"valeur_fonciere",
			"surface_reelle_bati",
			"type_local",
			"code_departement",
			"code_commune",
			"latitude",
			"longitude",
		}),
	}).Create(&batch).Error
	if err != nil {
		return fmt.Errorf("failed to upsert transactions: %w", err)
	}

	return nil
}
