package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"foncier/server/config"
	"foncier/server/internal/api"
	"foncier/server/internal/database"
	"foncier/server/internal/dvf"
	"foncier/server/internal/geography"
	"foncier/server/internal/loader"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Data.DatabasePath)

	// Initialize database
	db, err := database.NewDatabase(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Load and publish the canonical table once; requests share it
	// read-only until the next refresh.
	store := loader.NewStore()
	records, err := db.GetAllRawRecords()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load raw transactions")
	}
	table, report, err := loader.Clean(database.RawColumns(), records, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to clean raw transactions")
	}
	store.Publish(table, report)

	// Build the location hierarchy from the cached boundary files
	hierarchy := loadHierarchy(cfg, logger)

	// Initialize handler
	handler := api.NewHandler(store, db, hierarchy, cfg, logger)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// loadHierarchy fetches (or reads from cache) the three boundary files
// and assembles the location tree. The server still works without it;
// only the location selector endpoint degrades.
func loadHierarchy(cfg *config.Config, logger *logrus.Logger) *geography.Hierarchy {
	downloader := dvf.NewDownloader(logger, cfg.Data.CacheDir)

	regions, err := downloader.FetchGeoJSON("regions", cfg.Data.RegionsGeoJSONURL)
	if err != nil {
		logger.WithError(err).Warn("Could not load regions boundary file")
		return nil
	}
	departments, err := downloader.FetchGeoJSON("departments", cfg.Data.DepartmentsGeoJSONURL)
	if err != nil {
		logger.WithError(err).Warn("Could not load departments boundary file")
		return nil
	}
	communes, err := downloader.FetchGeoJSON("communes", cfg.Data.CommunesGeoJSONURL)
	if err != nil {
		logger.WithError(err).Warn("Could not load communes boundary file")
		return nil
	}

	hierarchy, err := geography.BuildHierarchy(regions, departments, communes, logger)
	if err != nil {
		logger.WithError(err).Warn("Could not build location hierarchy")
		return nil
	}
	return hierarchy
}
