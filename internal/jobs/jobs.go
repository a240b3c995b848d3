// Package jobs runs background work over asynq: today that is the daily
// cheque collection scan, surfaced to the terminal as banner alerts.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"apexpos/backend/internal/service"
)

const (
	// QueueDefault is the queue all billing jobs are enqueued on.
	QueueDefault = "default"
	// TaskTypeChequeDueScan walks every customer's recorded cheque dates and
	// reports the ones coming due.
	TaskTypeChequeDueScan = "billing:cheque-due-scan"

	// chequeDueScanCron fires once a day, shortly after the counter opens.
	chequeDueScanCron = "0 8 * * *"
)

// ChequeDueScanPayload parameterizes one scan run. AsOf overrides the scan
// date for reprocessing; empty means "now".
type ChequeDueScanPayload struct {
	AsOf string `json:"asOf,omitempty"`
}

// NewChequeDueScanTask constructs the asynq task for a scan run.
func NewChequeDueScanTask(payload ChequeDueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeChequeDueScan, data), nil
}

// ChequeDueScanJob resolves cheque-due alerts through the billing service.
type ChequeDueScanJob struct {
	svc   *service.Service
	clock func() time.Time
}

func NewChequeDueScanJob(svc *service.Service) *ChequeDueScanJob {
	return &ChequeDueScanJob{
		svc: svc,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one scan. Malformed payloads are dropped rather than
// retried; a storage failure is returned so asynq retries later.
func (j *ChequeDueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.svc == nil {
		return errors.New("cheque due scan: handler not configured")
	}
	var payload ChequeDueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	now := j.clock()
	if payload.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", payload.AsOf)
		if err != nil {
			return asynq.SkipRetry
		}
		now = parsed
	}

	alerts, err := j.svc.ChequeDueAlerts(ctx, now)
	if err != nil {
		return err
	}
	for _, alert := range alerts {
		log.Printf("[jobs] cheque due in %d days: customer=%s name=%q date=%s sale=%s",
			alert.DaysLeft, alert.CustomerID, alert.CustomerName, alert.Date, alert.SaleID)
	}
	// Warm the outstanding report so the first admin request of the day is a
	// cache hit. A warmup failure is not a reason to retry the scan.
	if _, err := j.svc.CustomerOutstandingReport(ctx); err != nil {
		log.Printf("[jobs] WARN: outstanding report warmup failed: %v", err)
	}
	log.Printf("[jobs] cheque due scan completed: %d alert(s)", len(alerts))
	return nil
}

// Worker wraps the asynq server plus the scheduler that triggers the daily
// scan.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// NewWorker constructs the worker and registers the daily cheque-due scan.
func NewWorker(redisOpts asynq.RedisClientOpt, svc *service.Service) (*Worker, error) {
	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeChequeDueScan, NewChequeDueScanJob(svc).Handle)

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	task, err := NewChequeDueScanTask(ChequeDueScanPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(chequeDueScanCron, task, asynq.Queue(QueueDefault)); err != nil {
		return nil, err
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler}, nil
}

// Run starts processing jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if err := w.scheduler.Start(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}
