package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Task is run on a fixed interval
type Task interface {
	Run(ctx context.Context) error
	Interval() time.Duration
	Name() string
}

// Worker is a long-running loop that returns when its context ends
type Worker func(ctx context.Context) error

// Status is the outcome of a task's most recent run
type Status struct {
	Name    string
	Runs    int
	LastRun time.Time
	LastErr error
}

// Scheduler runs periodic tasks and long-running workers until stopped
type Scheduler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	tasks   []Task
	workers map[string]Worker
	wg      sync.WaitGroup

	mu     sync.Mutex
	status map[string]*Status
}

// New creates a scheduler bound to ctx
func New(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:     ctx,
		cancel:  cancel,
		workers: make(map[string]Worker),
		status:  make(map[string]*Status),
	}
}

// AddTask adds a periodic task. Must be called before Start.
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
	s.status[task.Name()] = &Status{Name: task.Name()}
}

// AddWorker adds a long-running worker. Must be called before Start.
func (s *Scheduler) AddWorker(name string, w Worker) {
	s.workers[name] = w
}

// Start launches every task and worker in its own goroutine
func (s *Scheduler) Start() {
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runTask(task)
	}
	for name, w := range s.workers {
		s.wg.Add(1)
		go s.runWorker(name, w)
	}
	slog.Debug("Scheduler started", "task_count", len(s.tasks), "worker_count", len(s.workers))
}

// Stop cancels the context and waits for everything to return
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Debug("Scheduler stopped")
}

// Status returns a copy of the task outcomes
func (s *Scheduler) Status(name string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[name]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

func (s *Scheduler) runWorker(name string, w Worker) {
	defer s.wg.Done()
	if err := w(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker stopped", "worker", name, "error", err)
	}
}

// runTask runs a task immediately and then on every tick
func (s *Scheduler) runTask(task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval())
	defer ticker.Stop()

	s.execute(task)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(task)
		}
	}
}

func (s *Scheduler) execute(task Task) {
	err := task.Run(s.ctx)
	if err != nil {
		slog.Error("Error running task", "task", task.Name(), "error", err)
	}

	s.mu.Lock()
	st := s.status[task.Name()]
	st.Runs++
	st.LastRun = time.Now()
	st.LastErr = err
	s.mu.Unlock()
}
