// Package aggregate derives the chart-facing views from the canonical
// transaction table. Every derivation is a pure function of the table and
// a selection: nothing here mutates the table, so concurrent requests can
// share it freely.
package aggregate

import (
	"sort"
	"time"

	"foncier/server/internal/models"
)

// filterRows applies the geographic and date-range selection. Absent
// options mean no filter on that dimension. DateTo is inclusive.
func filterRows(table *models.Table, sel models.Selection) []models.Transaction {
	if table == nil {
		return nil
	}

	rows := make([]models.Transaction, 0, len(table.Rows))
	for _, tx := range table.Rows {
		if sel.Region != "" && tx.RegionCode != sel.Region {
			continue
		}
		if sel.Department != "" && tx.Department != sel.Department {
			continue
		}
		if sel.Commune != "" && tx.Commune != sel.Commune {
			continue
		}
		if !sel.DateFrom.IsZero() && tx.SaleDate.Before(sel.DateFrom) {
			continue
		}
		if !sel.DateTo.IsZero() && tx.SaleDate.After(sel.DateTo) {
			continue
		}
		rows = append(rows, tx)
	}
	return rows
}

// ByGeography groups the selected rows at the requested level and returns
// count and mean price per square meter per group, sorted by code. Groups
// with zero rows are omitted, never emitted with a zero mean.
func ByGeography(table *models.Table, sel models.Selection, level models.GeoLevel) []models.GeoStat {
	keyOf := func(tx models.Transaction) string {
		switch level {
		case models.LevelRegion:
			return tx.RegionCode
		case models.LevelDepartment:
			return tx.Department
		default:
			return tx.Commune
		}
	}

	type acc struct {
		count int
		sum   float64
	}
	groups := make(map[string]*acc)
	for _, tx := range filterRows(table, sel) {
		key := keyOf(tx)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.count++
		g.sum += tx.PricePerM2
	}

	stats := make([]models.GeoStat, 0, len(groups))
	for code, g := range groups {
		stats = append(stats, models.GeoStat{
			Code:           code,
			Count:          g.count,
			MeanPricePerM2: g.sum / float64(g.count),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Code < stats[j].Code })
	return stats
}

// typeOrder fixes the slice order of the pie view.
var typeOrder = []models.PropertyType{
	models.TypeApartment,
	models.TypeHouse,
	models.TypeDependency,
	models.TypeCommercial,
	models.TypeOther,
}

// ByPropertyType returns count and percentage share per property type.
// An empty selection yields an empty view rather than dividing by zero.
func ByPropertyType(table *models.Table, sel models.Selection) []models.TypeShare {
	counts := make(map[models.PropertyType]int)
	total := 0
	for _, tx := range filterRows(table, sel) {
		counts[tx.PropertyType]++
		total++
	}
	if total == 0 {
		return nil
	}

	shares := make([]models.TypeShare, 0, len(counts))
	for _, pt := range typeOrder {
		count, ok := counts[pt]
		if !ok {
			continue
		}
		shares = append(shares, models.TypeShare{
			Type:       pt,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	return shares
}

// OverTime buckets the selected rows by day and returns the mean price
// per square meter per bucket plus a trailing moving average over the
// last window observed buckets. Days without transactions are omitted
// and do not reset the window: the average smooths over observed data
// points, not calendar days.
func OverTime(table *models.Table, sel models.Selection, window int) []models.TimePoint {
	if window < 1 {
		window = 1
	}

	type acc struct {
		count int
		sum   float64
	}
	buckets := make(map[time.Time]*acc)
	for _, tx := range filterRows(table, sel) {
		day := tx.SaleDate.Truncate(24 * time.Hour)
		b, ok := buckets[day]
		if !ok {
			b = &acc{}
			buckets[day] = b
		}
		b.count++
		b.sum += tx.PricePerM2
	}
	if len(buckets) == 0 {
		return nil
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]models.TimePoint, 0, len(days))
	var windowSum float64
	for i, day := range days {
		b := buckets[day]
		mean := b.sum / float64(b.count)

		windowSum += mean
		if i >= window {
			prev := buckets[days[i-window]]
			windowSum -= prev.sum / float64(prev.count)
		}
		span := i + 1
		if span > window {
			span = window
		}

		points = append(points, models.TimePoint{
			Date:           day,
			Count:          b.count,
			MeanPricePerM2: mean,
			MovingAverage:  windowSum / float64(span),
		})
	}
	return points
}

// Distribution sorts the selected price-per-m2 values into equal-width
// bins spanning [min, max]. Bins are half-open except the last, so the
// counts always sum to the number of selected rows. Fewer than two
// distinct values collapse to a single bin.
func Distribution(table *models.Table, sel models.Selection, bins int) []models.HistogramBin {
	if bins < 1 {
		bins = 1
	}

	var values []float64
	for _, tx := range filterRows(table, sel) {
		values = append(values, tx.PricePerM2)
	}
	if len(values) == 0 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		return []models.HistogramBin{{From: min, To: max, Count: len(values)}}
	}

	width := (max - min) / float64(bins)
	result := make([]models.HistogramBin, bins)
	for i := range result {
		result[i].From = min + float64(i)*width
		result[i].To = min + float64(i+1)*width
	}
	result[bins-1].To = max

	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		result[idx].Count++
	}
	return result
}
