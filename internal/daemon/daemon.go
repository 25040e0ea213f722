package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flight_atlas/internal/database"
	"flight_atlas/internal/models"
	"flight_atlas/internal/scheduler"
	"flight_atlas/internal/tasks"
)

// Daemon owns the local store and the background work around it: the
// visit collector and the periodic visit prune
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler *scheduler.Scheduler
	database  *database.DB
	visitChan chan *models.Visit
	record    func(models.Visit)
	done      chan struct{}
}

// Config holds daemon configuration
type Config struct {
	DBPath        string        // Path to SQLite database
	BatchSize     int           // Number of visits to batch before writing
	FlushInterval time.Duration // flush batch after this time even if not full
	Keep          int           // visits kept by the prune task
	PruneInterval time.Duration
}

// New opens the database and prepares the background tasks
func New(cfg Config) (*Daemon, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DBPath is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	db, err := database.New(cfg.DBPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	visitChan := make(chan *models.Visit, 256)
	sched := scheduler.New(ctx)

	collector := tasks.NewVisitCollectorWithConfig(db.VisitRepository(), visitChan, cfg.BatchSize, cfg.FlushInterval)
	sched.AddWorker("visit_collector", collector.Start)

	keep := cfg.Keep
	if keep <= 0 {
		keep = 200
	}
	sched.AddTask(tasks.NewPruneVisitsTask(db.VisitRepository(), keep, cfg.PruneInterval))

	return &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: sched,
		database:  db,
		visitChan: visitChan,
		record:    tasks.Recorder(visitChan),
		done:      make(chan struct{}),
	}, nil
}

func (d *Daemon) Start() error {
	slog.Info("Starting daemon")

	d.scheduler.Start()

	go func() {
		<-d.ctx.Done()
		close(d.done)
	}()

	slog.Info("Daemon started successfully")
	return nil
}

// Stop flushes pending visits and closes the database
func (d *Daemon) Stop() error {
	slog.Info("Stopping daemon")
	d.cancel()
	<-d.done

	d.scheduler.Stop()

	if err := d.database.Close(); err != nil {
		slog.Error("Error closing database", "error", err)
	}

	slog.Info("Daemon stopped")
	return nil
}

// Record queues a visit for the collector without blocking
func (d *Daemon) Record(v models.Visit) {
	d.record(v)
}

func (d *Daemon) Visits() database.VisitRepository {
	return d.database.VisitRepository()
}

func (d *Daemon) Contacts() database.ContactRepository {
	return d.database.ContactRepository()
}
