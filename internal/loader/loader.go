package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"foncier/server/config"
	"foncier/server/internal/models"
)

// ErrDataFormat is returned when a mandatory column is missing from the
// raw dataset. Loading halts; there is no point cleaning rows that cannot
// carry the metric.
var ErrDataFormat = errors.New("raw data format error")

// Column names as they appear in the DVF dump.
const (
	ColMutationID = "id_mutation"
	ColParcelID   = "id_parcelle"
	ColDate       = "date_mutation"
	ColPrice      = "valeur_fonciere"
	ColArea       = "surface_reelle_bati"
	ColType       = "type_local"
	ColDepartment = "code_departement"
	ColCommune    = "code_commune"
	ColLatitude   = "latitude"
	ColLongitude  = "longitude"
)

// mandatoryColumns must be present in the header for cleaning to start.
var mandatoryColumns = []string{ColDate, ColPrice, ColArea, ColDepartment, ColCommune}

// RawRecord is one row of the raw dataset keyed by column name. Optional
// fields may be missing or empty.
type RawRecord map[string]string

// RejectReason labels why a row was dropped during cleaning.
type RejectReason string

const (
	RejectUnparseablePrice RejectReason = "unparseable_price"
	RejectUnparseableArea  RejectReason = "unparseable_area"
	RejectUnparseableDate  RejectReason = "unparseable_date"
	RejectNonPositiveArea  RejectReason = "non_positive_area"
	RejectNegativePrice    RejectReason = "negative_price"
	RejectMissingGeography RejectReason = "missing_geography"
)

// Report summarizes one cleaning run. Rejections are counted per reason
// and never surfaced individually.
type Report struct {
	Accepted   int
	Rejected   int
	Rejections map[RejectReason]int
}

func (r *Report) reject(reason RejectReason) {
	if r.Rejections == nil {
		r.Rejections = make(map[RejectReason]int)
	}
	r.Rejected++
	r.Rejections[reason]++
}

// Clean coerces and validates raw records into the canonical table.
// It fails with ErrDataFormat when a mandatory column is absent from the
// header; individual bad rows are dropped and counted in the report.
func Clean(columns []string, records []RawRecord, logger *logrus.Logger) (*models.Table, Report, error) {
	var report Report

	if err := checkSchema(columns); err != nil {
		return nil, report, err
	}

	rows := make([]models.Transaction, 0, len(records))
	for _, rec := range records {
		tx, reason, ok := cleanRecord(rec)
		if !ok {
			report.reject(reason)
			continue
		}
		rows = append(rows, tx)
		report.Accepted++
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"accepted": report.Accepted,
			"rejected": report.Rejected,
		}).Info("Cleaned raw transaction records")
	}

	return &models.Table{Rows: rows}, report, nil
}

func checkSchema(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, c := range mandatoryColumns {
		if !present[c] {
			return fmt.Errorf("%w: missing mandatory column %q", ErrDataFormat, c)
		}
	}
	return nil
}

// cleanRecord runs the validation sequence on one raw row: coerce the
// numeric and date fields, resolve the geography, then apply the row
// rules. The first failing step decides the rejection reason.
func cleanRecord(rec RawRecord) (models.Transaction, RejectReason, bool) {
	var tx models.Transaction

	price, err := strconv.ParseFloat(strings.TrimSpace(rec[ColPrice]), 64)
	if err != nil {
		return tx, RejectUnparseablePrice, false
	}
	area, err := strconv.ParseFloat(strings.TrimSpace(rec[ColArea]), 64)
	if err != nil {
		return tx, RejectUnparseableArea, false
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[ColDate]))
	if err != nil {
		return tx, RejectUnparseableDate, false
	}

	tx = models.Transaction{
		MutationID:   rec[ColMutationID],
		SaleDate:     date,
		Price:        price,
		BuiltArea:    area,
		PropertyType: NormalizeType(rec[ColType]),
		Department:   strings.TrimSpace(rec[ColDepartment]),
		Commune:      strings.TrimSpace(rec[ColCommune]),
	}

	if lat, err := strconv.ParseFloat(rec[ColLatitude], 64); err == nil {
		tx.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(rec[ColLongitude], 64); err == nil {
		tx.Longitude = &lon
	}

	if tx.Department == "" && tx.Commune != "" {
		tx.Department = config.DepartmentCode(tx.Commune)
	}
	if region, ok := config.RegionForDepartment(tx.Department); ok {
		tx.RegionCode = region.Code
	}

	for _, rule := range rowRules {
		if reason, rejected := rule.check(&tx); rejected {
			return tx, reason, false
		}
	}

	tx.PricePerM2 = tx.Price / tx.BuiltArea
	return tx, "", true
}

// rowRules are the named validation predicates applied to every coerced
// row, in order. Each is unit tested on its own.
var rowRules = []struct {
	name  string
	check func(*models.Transaction) (RejectReason, bool)
}{
	{"area_is_positive", areaIsPositive},
	{"price_is_non_negative", priceIsNonNegative},
	{"has_geography", hasGeography},
}

// areaIsPositive rejects rows that would divide by zero (or produce a
// negative metric) when computing price per square meter.
func areaIsPositive(tx *models.Transaction) (RejectReason, bool) {
	if tx.BuiltArea <= 0 {
		return RejectNonPositiveArea, true
	}
	return "", false
}

// priceIsNonNegative rejects negative-price artifacts that would corrupt
// downstream means.
func priceIsNonNegative(tx *models.Transaction) (RejectReason, bool) {
	if tx.Price < 0 {
		return RejectNegativePrice, true
	}
	return "", false
}

// hasGeography rejects rows missing any grouping level.
func hasGeography(tx *models.Transaction) (RejectReason, bool) {
	if tx.RegionCode == "" || tx.Department == "" || tx.Commune == "" {
		return RejectMissingGeography, true
	}
	return "", false
}

// typeAliases maps lowercased DVF type_local values (and their English
// equivalents) onto the normalized categories.
var typeAliases = map[string]models.PropertyType{
	"appartement": models.TypeApartment,
	"apartment":   models.TypeApartment,
	"maison":      models.TypeHouse,
	"house":       models.TypeHouse,
	"dépendance":  models.TypeDependency,
	"dependance":  models.TypeDependency,
	"dependency":  models.TypeDependency,
}

// NormalizeType maps a raw type_local value onto the fixed categorical
// set. Matching is case-insensitive; unmatched values become TypeOther.
func NormalizeType(raw string) models.PropertyType {
	l := strings.ToLower(strings.TrimSpace(raw))
	if l == "" {
		return models.TypeOther
	}
	if t, ok := typeAliases[l]; ok {
		return t
	}
	// "Local industriel. commercial ou assimilé" and variants
	if strings.HasPrefix(l, "local") || strings.Contains(l, "commercial") {
		return models.TypeCommercial
	}
	return models.TypeOther
}
