package tasks

import (
	"context"
	"log/slog"
	"time"

	"flight_atlas/internal/database"
	"flight_atlas/internal/models"
)

// VisitCollector collects detail-page visits and commits them to the database in batches
type VisitCollector struct {
	repo          database.VisitRepository
	visitChan     <-chan *models.Visit
	batchSize     int           // maximum number of visits in a batch before committing to database
	flushInterval time.Duration // time to flush batch even if not full
}

// Default batch size is 20 visits and flush interval is 5 seconds
func NewVisitCollector(repo database.VisitRepository, visitChan <-chan *models.Visit) *VisitCollector {
	return NewVisitCollectorWithConfig(repo, visitChan, 20, 5*time.Second)
}

// NewVisitCollectorWithConfig creates a collector with custom batch settings
func NewVisitCollectorWithConfig(repo database.VisitRepository, visitChan <-chan *models.Visit, batchSize int, flushInterval time.Duration) *VisitCollector {
	if batchSize <= 0 {
		batchSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &VisitCollector{
		repo:          repo,
		visitChan:     visitChan,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Start collects visits until the context is cancelled or the channel is
// closed. Batches are flushed when full and on every flush interval tick,
// so a lone visit is persisted without waiting for the next one.
func (c *VisitCollector) Start(ctx context.Context) error {
	batch := make([]*models.Visit, 0, c.batchSize)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	flushBatch := func() {
		if len(batch) == 0 {
			return
		}
		if err := c.repo.InsertBatch(batch); err != nil {
			slog.Error("Error inserting batch of visits", "batch_size", len(batch), "error", err)
		} else {
			slog.Debug("Inserted batch of visits", "batch_size", len(batch))
		}
		// the repository may keep the slice; start a fresh one
		batch = make([]*models.Visit, 0, c.batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			// keep whatever is already buffered
			for drained := false; !drained; {
				select {
				case visit, ok := <-c.visitChan:
					if !ok {
						drained = true
					} else if visit != nil {
						batch = append(batch, visit)
					}
				default:
					drained = true
				}
			}
			flushBatch()
			return ctx.Err()

		case <-ticker.C:
			flushBatch()

		case visit, ok := <-c.visitChan:
			if !ok {
				flushBatch()
				return nil
			}
			if visit == nil {
				continue
			}

			batch = append(batch, visit)
			slog.Debug("Added visit to batch",
				"kind", visit.Kind,
				"code", visit.Code,
				"current_batch_size", len(batch),
				"max_batch_size", c.batchSize,
			)

			if len(batch) >= c.batchSize {
				flushBatch()
			}
		}
	}
}

// Recorder returns a non-blocking sender for visits. A visit is dropped
// with a warning when the channel is full.
func Recorder(visitChan chan<- *models.Visit) func(models.Visit) {
	return func(v models.Visit) {
		if v.Timestamp.IsZero() {
			v.Timestamp = time.Now()
		}
		select {
		case visitChan <- &v:
		default:
			slog.Warn("Visit channel full, dropping visit", "kind", v.Kind, "code", v.Code)
		}
	}
}
