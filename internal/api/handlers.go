package api

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"foncier/server/config"
	"foncier/server/internal/aggregate"
	"foncier/server/internal/database"
	"foncier/server/internal/geography"
	"foncier/server/internal/loader"
	"foncier/server/internal/models"
)

type Handler struct {
	store     *loader.Store
	db        *database.Database
	hierarchy *geography.Hierarchy
	cfg       *config.Config
	logger    *logrus.Logger
}

// DateRange carries the optional date filter shared by every read
// endpoint. Dates use the 2006-01-02 layout.
type DateRange struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func NewHandler(store *loader.Store, db *database.Database, hierarchy *geography.Hierarchy, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		store:     store,
		db:        db,
		hierarchy: hierarchy,
		cfg:       cfg,
		logger:    logger,
	}
}

// selection builds the aggregation filter from the request. Absent query
// params leave their dimension unfiltered.
func (h *Handler) selection(c *gin.Context) (models.Selection, bool) {
	var dateRange DateRange
	if err := c.ShouldBindQuery(&dateRange); err != nil {
		h.logger.WithError(err).Error("Failed to parse date range")
	}

	sel := models.Selection{
		Region:     c.Query("region"),
		Department: c.Query("department"),
		Commune:    c.Query("commune"),
	}

	if dateRange.StartDate != "" {
		t, err := time.Parse("2006-01-02", dateRange.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate, expected YYYY-MM-DD"})
			return sel, false
		}
		sel.DateFrom = t
	}
	if dateRange.EndDate != "" {
		t, err := time.Parse("2006-01-02", dateRange.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate, expected YYYY-MM-DD"})
			return sel, false
		}
		sel.DateTo = t
	}

	return sel, true
}

// GetMapStats serves the choropleth view at the requested level.
func (h *Handler) GetMapStats(c *gin.Context) {
	level := models.GeoLevel(c.Param("level"))
	switch level {
	case models.LevelRegion, models.LevelDepartment, models.LevelCommune:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown level, expected region, department or commune"})
		return
	}

	sel, ok := h.selection(c)
	if !ok {
		return
	}

	stats := aggregate.ByGeography(h.store.Table(), sel, level)
	c.JSON(http.StatusOK, stats)
}

// GetTypeShares serves the property-type pie view.
func (h *Handler) GetTypeShares(c *gin.Context) {
	sel, ok := h.selection(c)
	if !ok {
		return
	}

	shares := aggregate.ByPropertyType(h.store.Table(), sel)
	c.JSON(http.StatusOK, shares)
}

// GetTimeSeries serves the daily mean price series with its trailing
// moving average.
func (h *Handler) GetTimeSeries(c *gin.Context) {
	sel, ok := h.selection(c)
	if !ok {
		return
	}

	points := aggregate.OverTime(h.store.Table(), sel, h.cfg.Aggregation.MovingAverageWindow)
	c.JSON(http.StatusOK, points)
}

// GetHistogram serves the price-per-m2 distribution.
func (h *Handler) GetHistogram(c *gin.Context) {
	sel, ok := h.selection(c)
	if !ok {
		return
	}

	bins := h.cfg.Aggregation.HistogramBins
	if binsStr := c.Query("bins"); binsStr != "" {
		parsed, err := strconv.Atoi(binsStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bins, expected a positive integer"})
			return
		}
		bins = parsed
	}

	result := aggregate.Distribution(h.store.Table(), sel, bins)
	c.JSON(http.StatusOK, result)
}

// GetLocations serves the region > department > commune tree.
func (h *Handler) GetLocations(c *gin.Context) {
	if h.hierarchy == nil {
		// Keep regions an array so clients can iterate without a nil check
		c.JSON(http.StatusOK, geography.Hierarchy{Regions: []geography.RegionNode{}})
		return
	}
	c.JSON(http.StatusOK, h.hierarchy)
}

// GetSummary describes the published table and its cleaning report.
func (h *Handler) GetSummary(c *gin.Context) {
	table := h.store.Table()
	report := h.store.Report()

	var sum float64
	for _, tx := range table.Rows {
		sum += tx.PricePerM2
	}
	summary := models.Summary{
		TotalRows:    table.Len(),
		RejectedRows: report.Rejected,
	}
	if table.Len() > 0 {
		summary.MeanPricePerM2 = sum / float64(table.Len())
	}
	if len(report.Rejections) > 0 {
		summary.Rejections = make(map[string]int, len(report.Rejections))
		for reason, count := range report.Rejections {
			summary.Rejections[string(reason)] = count
		}
	}

	c.JSON(http.StatusOK, summary)
}

// RefreshTable reloads the canonical table from the database and swaps
// it atomically; in-flight readers keep the table they started with.
func (h *Handler) RefreshTable(c *gin.Context) {
	records, err := h.db.GetAllRawRecords()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load raw transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load raw transactions"})
		return
	}

	table, report, err := loader.Clean(database.RawColumns(), records, h.logger)
	if err != nil {
		h.logger.WithError(err).Error("Failed to clean raw transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.store.Publish(table, report)
	c.JSON(http.StatusOK, gin.H{
		"status":   "Canonical table refreshed",
		"rows":     table.Len(),
		"rejected": report.Rejected,
	})
}
