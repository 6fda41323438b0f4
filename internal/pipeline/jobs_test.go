package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/ocr"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting"},
		{StatusCompleted, "done"},
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

func TestJobStatus_Finished(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{StatusQueued, false},
		{StatusExtracting, false},
		{StatusCompleted, true},
		{StatusPartial, true},
		{StatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.Finished(); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.status, tt.want, got)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("page 3: render: boom")
	job.AddError("page 7: render: boom")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "page 3: render: boom" {
		t.Errorf("expected first error %q, got %q", "page 3: render: boom", snap.Progress.Errors[0])
	}
}

func TestJob_SetProgress(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.SetProgress(ocr.Progress{Status: "OCR processing page 1 of 4", Fraction: 0.5})
	job.SetProgress(ocr.Progress{Status: "OCR processing page 2 of 4", Fraction: 0.625})

	snap := job.Snapshot()
	if snap.Progress.Status != "OCR processing page 2 of 4" || snap.Progress.Fraction != 0.625 {
		t.Errorf("expected latest event, got %+v", snap.Progress)
	}
}

func TestJob_FinishReleasesUpload(t *testing.T) {
	job := NewJob("scan.png", "", []byte("bytes"))
	res := &document.Result{Text: "hello"}
	job.finish(res, StatusCompleted, "done")

	if job.FileData() != nil {
		t.Error("expected upload to be released")
	}
	if job.Result() != res {
		t.Error("expected result to be stored")
	}
	if snap := job.Snapshot(); snap.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", snap.Status)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("a.txt", "Title", []byte("hello world"))
	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("expected queued job, got %q/%q", job.Status, job.Phase)
	}
	if len(job.ID) != 26 {
		t.Errorf("expected 26-character ID, got %q", job.ID)
	}
	if job.ContentHash != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Errorf("unexpected content hash %q", job.ContentHash)
	}
	if string(job.FileData()) != "hello world" {
		t.Error("expected upload bytes to be held")
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
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

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", Status: StatusCompleted, UpdatedAt: time.Now()}
	store.Put(fresh)

	running := &Job{ID: "running", Status: StatusExtracting, UpdatedAt: time.Now().Add(-time.Hour)}
	store.Put(running)

	store.Cleanup()

	if store.Get("running") == nil {
		t.Error("expected unfinished job to survive cleanup")
	}
	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}

func TestJobStore_ListAndDelete(t *testing.T) {
	store := NewJobStore(time.Hour)
	base := time.Now()
	store.Put(&Job{ID: "b", CreatedAt: base.Add(time.Second)})
	store.Put(&Job{ID: "a", CreatedAt: base})
	store.Put(&Job{ID: "c", CreatedAt: base.Add(2 * time.Second)})

	var ids []string
	for _, j := range store.List() {
		ids = append(ids, j.ID)
	}
	if got := strings.Join(ids, ","); got != "a,b,c" {
		t.Errorf("expected creation order, got %s", got)
	}

	if !store.Delete("b") {
		t.Error("expected delete of existing job to report true")
	}
	if store.Delete("b") {
		t.Error("expected second delete to report false")
	}
	if len(store.List()) != 2 {
		t.Errorf("expected 2 jobs left, got %d", len(store.List()))
	}
}
