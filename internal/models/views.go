package models

import "time"

// GeoLevel selects the grouping level for the choropleth view.
type GeoLevel string

const (
	LevelRegion     GeoLevel = "region"
	LevelDepartment GeoLevel = "department"
	LevelCommune    GeoLevel = "commune"
)

// Selection narrows the canonical table before aggregation. Zero values
// mean "no filter on that dimension".
type Selection struct {
	Region     string
	Department string
	Commune    string
	DateFrom   time.Time
	DateTo     time.Time
}

// GeoStat is one choropleth entry: a geographic code with its transaction
// count and mean price per square meter. Groups with zero rows are never
// emitted.
type GeoStat struct {
	Code           string  `json:"code"`
	Count          int     `json:"count"`
	MeanPricePerM2 float64 `json:"mean_price_per_m2"`
}

// TypeShare is one pie-chart slice.
type TypeShare struct {
	Type       PropertyType `json:"type"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

// TimePoint is one daily bucket of the time-series view. MovingAverage is
// the trailing mean over the preceding observed buckets, not calendar days.
type TimePoint struct {
	Date           time.Time `json:"date"`
	Count          int       `json:"count"`
	MeanPricePerM2 float64   `json:"mean_price_per_m2"`
	MovingAverage  float64   `json:"moving_average"`
}

// HistogramBin is one bar of the price-per-m2 distribution. Bins are
// half-open [From, To) except the last, which includes its upper edge.
type HistogramBin struct {
	From  float64 `json:"bin_start"`
	To    float64 `json:"bin_end"`
	Count int     `json:"count"`
}

// Summary describes the loaded table for the dashboard header.
type Summary struct {
	TotalRows      int            `json:"total_rows"`
	MeanPricePerM2 float64        `json:"mean_price_per_m2"`
	RejectedRows   int            `json:"rejected_rows"`
	Rejections     map[string]int `json:"rejections,omitempty"`
}
