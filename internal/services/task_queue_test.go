package services

import (
	"context"
	"testing"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
)

func TestTaskTypeEntityLog_Constant(t *testing.T) {
	if TaskTypeEntityLog != "audit:entity_log" {
		t.Errorf("TaskTypeEntityLog = %q, expected %q", TaskTypeEntityLog, "audit:entity_log")
	}
}

func TestSyncQueue_WithoutProcessor(t *testing.T) {
	q := NewSyncQueue()
	// Enqueue without a processor drops the task silently.
	if err := q.Enqueue(&EntityLogTask{Action: models.LogActionAdd}); err != nil {
		t.Errorf("enqueue without processor should not error, got %v", err)
	}
	if q.IsAsync() {
		t.Error("sync queue should report IsAsync() == false")
	}
	if err := q.Close(); err != nil {
		t.Errorf("close should be a no-op, got %v", err)
	}
}

func TestSyncQueue_ProcessesInline(t *testing.T) {
	q := NewSyncQueue()
	var got *EntityLogTask
	q.SetProcessor(func(_ context.Context, task *EntityLogTask) error {
		got = task
		return nil
	})

	task := &EntityLogTask{
		Action:     models.LogActionChange,
		UserID:     7,
		EntityType: models.EntityProjects,
		EntityID:   42,
	}
	if err := q.Enqueue(task); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if got == nil || got.EntityID != 42 || got.Action != models.LogActionChange {
		t.Errorf("processor saw %+v, expected the enqueued task", got)
	}
}

func TestRecordEntity_WritesThroughSyncQueue(t *testing.T) {
	db := newTestDB(t)

	RecordEntity(models.LogActionAdd, 1, models.EntityProjects, 5)
	RecordEntity(models.LogActionDelete, 1, models.EntityProjects, 5)

	if n := countRows(t, db, &models.EntityLog{}, "entity_type = ? AND entity_id = ?", models.EntityProjects, 5); n != 2 {
		t.Errorf("expected 2 audit rows, got %d", n)
	}
}

func TestRecordEntity_Uninitialized(t *testing.T) {
	entityDB = nil
	entityQueue = nil
	// Must not panic when the sink was never wired.
	RecordEntity(models.LogActionAdd, 1, models.EntityFAQ, 1)
}
