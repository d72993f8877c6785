package models

import "time"

// PropertyType is the normalized DVF "type_local" category.
type PropertyType string

const (
	TypeApartment  PropertyType = "apartment"
	TypeHouse      PropertyType = "house"
	TypeDependency PropertyType = "dependency"
	TypeCommercial PropertyType = "commercial"
	TypeOther      PropertyType = "other"
)

// Transaction is one cleaned DVF sale record.
type Transaction struct {
	MutationID   string       `json:"mutation_id"`
	SaleDate     time.Time    `json:"sale_date"`
	Price        float64      `json:"price"`
	BuiltArea    float64      `json:"built_area"`
	PropertyType PropertyType `json:"property_type"`
	RegionCode   string       `json:"region_code"`
	Department   string       `json:"department_code"`
	Commune      string       `json:"commune_code"`
	Latitude     *float64     `json:"latitude"`
	Longitude    *float64     `json:"longitude"`

	// PricePerM2 is Price / BuiltArea, set during cleaning.
	// BuiltArea is guaranteed positive for every cleaned row.
	PricePerM2 float64 `json:"price_per_m2"`
}

// Table is the canonical, cleaned transaction set. It is never mutated
// after construction; a refresh publishes a new Table instead.
type Table struct {
	Rows []Transaction
}

// Len returns the number of cleaned rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
