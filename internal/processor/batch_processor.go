package processor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"foncier/server/config"
	"foncier/server/internal/database"
	"foncier/server/internal/queue"
)

// BatchProcessor handles the persistence of raw transaction batches
type BatchProcessor struct {
	db     *gorm.DB
	logger *logrus.Logger
	config *config.Config
	queue  *queue.TransactionQueue
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db *gorm.DB, queue *queue.TransactionQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
	}
}

// Start registers the persistence handler and spins up the configured
// number of queue workers.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []*database.RawTransaction) error {
		return p.processBatch(batch)
	})
	p.queue.Start(p.config.BatchIngest.ProcessorCount)
}

// Stop closes the queue and blocks until every queued batch, including
// those already inside workers, has been committed.
func (p *BatchProcessor) Stop() {
	if err := p.queue.Close(); err != nil {
		p.logger.WithError(err).Error("Failed to close transaction queue")
	}
}

// processBatch handles a single batch of transactions with transaction and retry logic
func (p *BatchProcessor) processBatch(batch []*database.RawTransaction) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchIngest.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchIngest.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchIngest.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertRawTransactions(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert transactions batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d transactions", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchIngest.MaxRetries, err)
}
