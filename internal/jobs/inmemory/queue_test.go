package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ExportEntryJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job %s did not reach %q, last seen %+v", jobID, want, job)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(Config{}, store)
	defer q.Close()

	var handled atomic.Int32
	if err := q.Start(ctx, func(ctx context.Context, job jobs.Job) error {
		if job.GetType() != jobs.JobTypeExportEntry {
			t.Errorf("job type = %q", job.GetType())
		}
		handled.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	job := &jobs.ExportEntryJob{Entry: domain.AccountingEntry{ID: "ae1"}}
	if err := q.PublishExportEntry(ctx, job); err != nil {
		t.Fatalf("PublishExportEntry() error: %v", err)
	}
	if job.JobID == "" || job.EntryID != "ae1" {
		t.Errorf("defaults not applied: %+v", job)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if got.CompletedAt == nil || got.Error != "" {
		t.Errorf("completed job = %+v", got)
	}
	if handled.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", handled.Load())
	}
}

func TestQueue_Retries(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		failures   int32
		want       jobs.JobStatus
		wantCalls  int32
	}{
		{"no retries by default", 0, 1, jobs.JobStatusFailed, 1},
		{"recovers on retry", 2, 1, jobs.JobStatusCompleted, 2},
		{"gives up after limit", 1, 5, jobs.JobStatusFailed, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			store := NewStore()
			q := NewQueue(Config{MaxRetries: tt.maxRetries, RetryBackoff: time.Millisecond}, store)
			defer q.Close()

			var calls atomic.Int32
			_ = q.Start(ctx, func(ctx context.Context, job jobs.Job) error {
				if calls.Add(1) <= tt.failures {
					return errors.New("sink unavailable")
				}
				return nil
			})

			job := &jobs.ExportEntryJob{EntryID: "ae9"}
			if err := q.PublishExportEntry(ctx, job); err != nil {
				t.Fatal(err)
			}
			jobID := job.JobID

			got := waitForStatus(t, store, jobID, tt.want)
			if tt.want == jobs.JobStatusFailed && got.Error == "" {
				t.Error("failed job has no error message")
			}
			time.Sleep(20 * time.Millisecond)
			if calls.Load() != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue(Config{}, nil)
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.PublishExportEntry(context.Background(), &jobs.ExportEntryJob{}); err == nil {
		t.Error("PublishExportEntry() on closed queue returned nil error")
	}
	if err := q.Start(context.Background(), nil); err == nil {
		t.Error("Start() on closed queue returned nil error")
	}
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)

	for i, j := range []struct {
		id, entry string
		status    jobs.JobStatus
	}{
		{"j1", "ae1", jobs.JobStatusCompleted},
		{"j2", "ae2", jobs.JobStatusFailed},
		{"j3", "ae1", jobs.JobStatusFailed},
	} {
		err := s.SaveJob(ctx, &jobs.ExportEntryJob{
			JobID: j.id, EntryID: j.entry, Status: j.status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"j3", "j2", "j1"}},
		{"by entry", jobs.JobFilter{EntryID: "ae1"}, []string{"j3", "j1"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusFailed}, []string{"j3", "j2"}},
		{"limit and offset", jobs.JobFilter{Offset: 1, Limit: 1}, []string{"j2"}},
		{"offset past end", jobs.JobFilter{Offset: 5}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListJobs() returned %d jobs, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].JobID != id {
					t.Errorf("job[%d] = %s, want %s", i, got[i].JobID, id)
				}
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.GetJob(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("GetJob() error = %v, want ErrJobNotFound", err)
	}
	if err := s.UpdateJobStatus(context.Background(), "missing", jobs.JobStatusFailed, "x"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("UpdateJobStatus() error = %v, want ErrJobNotFound", err)
	}
	if err := s.SaveJob(context.Background(), &jobs.ExportEntryJob{}); err == nil {
		t.Error("SaveJob() without ID returned nil error")
	}
}
