package worker

import (
	"context"
	"errors"
	"time"

	"recruitment_notification_bot/internal/app"
	"recruitment_notification_bot/internal/domain/task"
	idb "recruitment_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// taskTimeout bounds a single provisioning run. Course duplication is the
// slow step; anything beyond this is handed back to the retry path.
const taskTimeout = 10 * time.Minute

// Worker polls the provisioning queue and runs claimed tasks one at a time.
// Claims use FOR UPDATE SKIP LOCKED in the queue, so extra worker processes
// can run side by side without ever sharing a task.
type Worker struct {
	queue        task.Queue
	provisioning *app.ProvisioningService
	pollInterval time.Duration
	logger       *logrus.Logger
	stop         context.CancelFunc
	done         chan struct{}
}

func NewWorker(queue task.Queue, provisioning *app.ProvisioningService, pollInterval time.Duration, logger *logrus.Logger) *Worker {
	return &Worker{
		queue:        queue,
		provisioning: provisioning,
		pollInterval: pollInterval,
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// Start launches the poll loop in its own goroutine.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.stop = cancel
	w.logger.Infof("Provisioning worker started, polling every %s.", w.pollInterval)

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		for {
			w.drain(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// drain claims and runs tasks until the queue is empty or the context ends.
func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		t, err := w.queue.Claim(ctx)
		if err != nil {
			if !errors.Is(err, idb.ErrNoTask) && ctx.Err() == nil {
				w.logger.Errorf("Failed to claim provisioning task: %v", err)
			}
			return
		}
		w.runOne(ctx, t)
	}
}

func (w *Worker) runOne(ctx context.Context, t *task.Provisioning) {
	w.logger.Infof("Running provisioning task %s (direction %d, attempt %d/%d).", t.ID, t.DirectionID, t.Attempts, t.MaxAttempts)
	runCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	if runErr := w.provisioning.Run(runCtx, t); runErr != nil {
		w.logger.Errorf("Provisioning task %s failed: %v", t.ID, runErr)
		terminal, err := w.queue.MarkFailed(context.Background(), t.ID, runErr)
		if err != nil {
			w.logger.Errorf("Failed to record task %s failure: %v", t.ID, err)
			return
		}
		if terminal {
			w.logger.Errorf("Provisioning task %s failed terminally after %d attempts.", t.ID, t.Attempts)
			w.provisioning.AlertFailure(t, runErr)
		}
		return
	}

	if err := w.queue.MarkDone(context.Background(), t.ID); err != nil {
		w.logger.Errorf("Failed to mark task %s done: %v", t.ID, err)
		return
	}
	w.logger.Infof("Provisioning task %s completed.", t.ID)
}

// Stop ends the poll loop and waits for the in-flight task, if any.
func (w *Worker) Stop() {
	if w.stop != nil {
		w.stop()
	}
	<-w.done
	w.logger.Info("Provisioning worker stopped.")
}
