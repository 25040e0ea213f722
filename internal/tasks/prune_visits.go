package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flight_atlas/internal/database"
)

// PruneVisitsTask trims the visit history to the newest keep rows
type PruneVisitsTask struct {
	repo     database.VisitRepository
	keep     int
	interval time.Duration
}

func NewPruneVisitsTask(repo database.VisitRepository, keep int, interval time.Duration) *PruneVisitsTask {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PruneVisitsTask{repo: repo, keep: keep, interval: interval}
}

func (t *PruneVisitsTask) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removed, err := t.repo.Prune(t.keep)
	if err != nil {
		return fmt.Errorf("failed to prune visits: %w", err)
	}
	if removed > 0 {
		slog.Info("Pruned visit history", "removed", removed, "keep", t.keep)
	}
	return nil
}

func (t *PruneVisitsTask) Interval() time.Duration { return t.interval }

func (t *PruneVisitsTask) Name() string { return "prune_visits" }
