package pipeline

import (
	"sync"
	"testing"
	"time"
)

func TestNewJob_Defaults(t *testing.T) {
	job := NewJob("exam.pdf", []byte("content"), true)
	if job.ID == "" {
		t.Fatal("expected non-empty job ID")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.Filename != "exam.pdf" {
		t.Errorf("expected filename %q, got %q", "exam.pdf", job.Filename)
	}
	if !job.Debug() {
		t.Error("expected debug flag to survive")
	}
	if string(job.FileData()) != "content" {
		t.Errorf("expected file data %q, got %q", "content", job.FileData())
	}
}

func TestNewJob_UniqueIDs(t *testing.T) {
	a := NewJob("a.pdf", nil, false)
	b := NewJob("b.pdf", nil, false)
	if a.ID == b.ID {
		t.Errorf("expected distinct job IDs, both were %q", a.ID)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("doc.pdf", nil, false)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting"},
		{StatusResolving, "resolving"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("doc.pdf", []byte("bytes"), false)
	job.SetResult(Result{Funcionario: "MARIA SILVA", Empresa: "ACME LTDA"})

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, snap.Status)
	}
	if snap.Result == nil {
		t.Fatal("expected result in snapshot")
	}
	if snap.Result.Funcionario != "MARIA SILVA" {
		t.Errorf("expected funcionario %q, got %q", "MARIA SILVA", snap.Result.Funcionario)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released after completion")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("doc.xyz", []byte("bytes"), false)
	job.Fail("extracting", "unsupported file extension: .xyz")

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.Error == "" {
		t.Error("expected error message in snapshot")
	}
	if snap.Result != nil {
		t.Error("expected no result on failed job")
	}
}

func TestJob_SnapshotOmitsPending(t *testing.T) {
	job := NewJob("doc.pdf", nil, false)
	snap := job.Snapshot()
	if snap.Result != nil {
		t.Error("expected nil result while queued")
	}
	if snap.Error != "" {
		t.Errorf("expected empty error while queued, got %q", snap.Error)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("doc.pdf", nil, false)
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != job.ID {
		t.Errorf("expected ID %q, got %q", job.ID, got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := NewJob("old.pdf", nil, false)
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := NewJob("new.pdf", nil, false)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(expired.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupConcurrentWithUpdates(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("busy.pdf", nil, false)
	store.Put(job)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			job.SetStatus(StatusResolving, "resolving")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			store.Cleanup()
		}
	}()
	wg.Wait()

	if store.Get(job.ID) == nil {
		t.Error("expected recently updated job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
