package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"foncier/server/config"
	"foncier/server/internal/database"
	"foncier/server/internal/dvf"
	"foncier/server/internal/processor"
	"foncier/server/internal/queue"
)

// Downloads the yearly DVF dump and persists it through the batch
// pipeline. Run it once before starting the server, or again to pick up
// a fresh dataset; the upsert keys keep re-runs idempotent.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.NewDatabase(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	gormDB, err := database.NewGormDB(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open ingest database connection")
	}

	downloader := dvf.NewDownloader(logger, cfg.Data.CacheDir)
	_, records, err := downloader.FetchDataset(cfg.Data.DatasetURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to fetch DVF dataset")
	}

	q := queue.NewTransactionQueue(cfg.BatchIngest.QueueBufferSize, logger)
	proc := processor.NewBatchProcessor(gormDB, q, cfg, logger)
	proc.Start()

	transactions := dvf.ToRawTransactions(records)
	batchSize := cfg.BatchIngest.MaxBatchSize
	for start := 0; start < len(transactions); start += batchSize {
		end := start + batchSize
		if end > len(transactions) {
			end = len(transactions)
		}
		batch := transactions[start:end]

		for {
			err := q.Push(batch)
			if err == nil {
				break
			}
			if err == queue.ErrQueueClosed {
				logger.Fatal("Ingest queue closed unexpectedly")
			}
			// Queue full: the processors are behind, give them a moment
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Stop closes the queue and blocks until every queued batch has
	// been committed, so nothing is lost on exit.
	proc.Stop()

	count, err := db.CountTransactions()
	if err != nil {
		logger.WithError(err).Fatal("Failed to count stored transactions")
	}
	logger.WithField("stored", count).Info("Ingest completed")
}
