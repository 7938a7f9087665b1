package usecase

import (
	"context"
	"testing"
	"time"

	"CoinPager/internal/domain/models"
)

func TestRegistryEvictsTerminalAfterRetention(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	r := NewJobRegistry(
		WithRetention(time.Hour),
		WithRegistryClock(func() time.Time { return now }),
	)

	r.Add(models.ExportJob{JobID: "old", Status: models.JobDone, CreatedAt: now.Add(-2 * time.Hour)}, nil)
	r.Add(models.ExportJob{JobID: "fresh", Status: models.JobDone, CreatedAt: now}, nil)

	// eviction runs on the next insert
	r.Add(models.ExportJob{JobID: "new", Status: models.JobQueued, CreatedAt: now}, nil)

	if _, ok := r.Get("old"); ok {
		t.Fatalf("expired terminal job must be evicted")
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Fatalf("job within retention must survive")
	}
}

func TestRegistryCapEvictsOldestTerminal(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	r := NewJobRegistry(
		WithMaxJobs(2),
		WithRetention(24*time.Hour),
		WithRegistryClock(func() time.Time { return now }),
	)

	r.Add(models.ExportJob{JobID: "a", Status: models.JobDone, CreatedAt: now}, nil)
	r.Add(models.ExportJob{JobID: "b", Status: models.JobRunning, CreatedAt: now}, nil)
	r.Add(models.ExportJob{JobID: "c", Status: models.JobQueued, CreatedAt: now}, nil)

	if _, ok := r.Get("a"); ok {
		t.Fatalf("oldest terminal job must be evicted at the cap")
	}
	if _, ok := r.Get("b"); !ok {
		t.Fatalf("running job must survive the cap trim")
	}
	if _, ok := r.Get("c"); !ok {
		t.Fatalf("new job must be inserted")
	}
}

func TestRegistryCancelTargetsJob(t *testing.T) {
	r := NewJobRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	r.Add(models.ExportJob{JobID: "j1", Status: models.JobRunning, CreatedAt: time.Now()}, cancel)

	if !r.Cancel("j1") {
		t.Fatalf("expected cancel to succeed")
	}
	if ctx.Err() == nil {
		t.Fatalf("context must be cancelled")
	}
	if r.Cancel("unknown") {
		t.Fatalf("unknown id must not cancel")
	}
}

func TestRegistryCancelIgnoresTerminal(t *testing.T) {
	r := NewJobRegistry()
	r.Add(models.ExportJob{JobID: "done", Status: models.JobDone, CreatedAt: time.Now()}, nil)

	if r.Cancel("done") {
		t.Fatalf("terminal job must not be cancellable")
	}
}

func TestRegistryCancelActivePicksNewest(t *testing.T) {
	r := NewJobRegistry()

	r.Add(models.ExportJob{JobID: "finished", Status: models.JobDone, CreatedAt: time.Now()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	r.Add(models.ExportJob{JobID: "active", Status: models.JobRunning, CreatedAt: time.Now()}, cancel)

	id, ok := r.CancelActive()
	if !ok || id != "active" {
		t.Fatalf("expected active job cancelled, got %q ok=%v", id, ok)
	}
	if ctx.Err() == nil {
		t.Fatalf("context must be cancelled")
	}

	r.Update("active", func(j *models.ExportJob) { j.Status = models.JobDone })
	if _, ok := r.CancelActive(); ok {
		t.Fatalf("second cancel has nothing to target")
	}
}

func TestRegistryUpdateIsVisibleToReaders(t *testing.T) {
	r := NewJobRegistry()
	r.Add(models.ExportJob{JobID: "j", Status: models.JobQueued, Total: 3, CreatedAt: time.Now()}, nil)

	r.Update("j", func(j *models.ExportJob) {
		j.Status = models.JobRunning
		j.Done = 2
	})

	job, ok := r.Get("j")
	if !ok || job.Status != models.JobRunning || job.Done != 2 {
		t.Fatalf("unexpected snapshot %+v", job)
	}
	if job.Percent() != 2.0/3.0*100 {
		t.Fatalf("percent = %v", job.Percent())
	}
}
