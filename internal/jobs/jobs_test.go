package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"apexpos/backend/internal/cache"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/service"
	"apexpos/backend/internal/store/memory"
)

func newTestJob(t *testing.T) (*ChequeDueScanJob, *memory.Store) {
	t.Helper()
	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NoopSearchCache{}, 5*time.Second, "APEX LOGISTICS")
	return NewChequeDueScanJob(svc), repo
}

func TestChequeDueScanTaskType(t *testing.T) {
	task, err := NewChequeDueScanTask(ChequeDueScanPayload{AsOf: "2026-03-01"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskTypeChequeDueScan {
		t.Fatalf("unexpected task type %s", task.Type())
	}
}

func TestChequeDueScanHandleRunsClean(t *testing.T) {
	job, repo := newTestJob(t)
	ctx := context.Background()

	customers, err := repo.ListCustomers(ctx)
	if err != nil || len(customers) == 0 {
		t.Fatalf("seeded customers missing: %v", err)
	}
	if err := repo.AppendChequeDue(ctx, customers[0].ID, domain.ChequeDueAnnotation{
		Date:   "2026-03-03",
		SaleID: "sale-1",
	}); err != nil {
		t.Fatalf("append cheque due: %v", err)
	}

	task, err := NewChequeDueScanTask(ChequeDueScanPayload{AsOf: "2026-03-01"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := job.Handle(ctx, task); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestChequeDueScanHandleSkipsMalformedPayload(t *testing.T) {
	job, _ := newTestJob(t)

	task := asynq.NewTask(TaskTypeChequeDueScan, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for malformed payload, got %v", err)
	}

	bad := asynq.NewTask(TaskTypeChequeDueScan, []byte(`{"asOf":"03/01/2026"}`))
	err = job.Handle(context.Background(), bad)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for malformed date, got %v", err)
	}
}
