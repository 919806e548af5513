// SchedulerService runs every sync and reconciliation function as an
// independent, indefinitely repeating task on its own fixed interval.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bridge-syncer/internal/metrics"

	"github.com/sirupsen/logrus"
)

// taskRunTimeout bounds a single task cycle so a hung RPC cannot wedge
// a loop forever.
const taskRunTimeout = 5 * time.Minute

// Task is one independently scheduled unit of work. Run is invoked
// once per interval; its error ends that cycle only.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// SchedulerService supervises the task loops. Tasks share the database
// pool and nothing else; a panic in one task body is recovered and the
// loop keeps its schedule, so a crashing task degrades to a warning
// instead of silently withdrawing its share of the work.
type SchedulerService struct {
	tasks    []Task
	log      *logrus.Entry
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
}

// NewSchedulerService creates a scheduler over the given tasks
func NewSchedulerService(tasks []Task, log *logrus.Entry) *SchedulerService {
	return &SchedulerService{
		tasks:    tasks,
		log:      log.WithField("service", "scheduler"),
		stopChan: make(chan struct{}),
	}
}

// Start launches one goroutine per task and returns
func (s *SchedulerService) Start() {
	if s.started {
		return
	}
	s.started = true

	for _, task := range s.tasks {
		s.log.WithFields(logrus.Fields{
			"task":     task.Name,
			"interval": task.Interval,
		}).Info("starting task loop")

		s.wg.Add(1)
		go s.runLoop(task)
	}
}

// Stop signals every loop to exit and waits for them
func (s *SchedulerService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// runLoop runs the task once immediately, then on every tick until
// stopped.
func (s *SchedulerService) runLoop(task Task) {
	defer s.wg.Done()

	s.runOnce(task)

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(task)
		case <-s.stopChan:
			return
		}
	}
}

// runOnce executes a single cycle with panic isolation. Errors and
// panics are logged and counted; the next tick retries from durable
// state.
func (s *SchedulerService) runOnce(task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TaskPanics.WithLabelValues(task.Name).Inc()
			metrics.TaskRuns.WithLabelValues(task.Name, "panic").Inc()
			s.log.WithFields(logrus.Fields{
				"task":  task.Name,
				"panic": fmt.Sprintf("%v", r),
			}).Error("task panicked, loop continues")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), taskRunTimeout)
	defer cancel()

	if err := task.Run(ctx); err != nil {
		metrics.TaskRuns.WithLabelValues(task.Name, "error").Inc()
		s.log.WithError(err).WithField("task", task.Name).Warn("task cycle failed")
		return
	}
	metrics.TaskRuns.WithLabelValues(task.Name, "ok").Inc()
}
