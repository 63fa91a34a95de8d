package errlog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestAppendAndList(t *testing.T) {
	l, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := l.Append("job-1", StageExtract, "no text found", "deck.pptx"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append("job-2", StageTranslate, "oracle unreachable", ""); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records := l.List()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].JobID != "job-1" || records[0].Stage != StageExtract {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[0].Message != "no text found" {
		t.Errorf("unexpected message '%s'", records[0].Message)
	}
	if records[0].Context != "deck.pptx" {
		t.Errorf("unexpected context '%s'", records[0].Context)
	}
	if records[0].Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if records[1].JobID != "job-2" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestRecordsSurviveReload(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := l.Append("job-1", StageGenerate, "render failed", ""); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("New on existing dir failed: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("expected 1 record after reload, got %d", reloaded.Len())
	}
	rec := reloaded.List()[0]
	if rec.JobID != "job-1" || rec.Stage != StageGenerate {
		t.Errorf("unexpected reloaded record: %+v", rec)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "errors")

	if _, err := New(dir); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("base directory was not created")
	}
}

func TestCorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "errors.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if _, err := New(dir); err == nil {
		t.Error("expected error for corrupt error log file")
	}
}

func TestConcurrentAppend(t *testing.T) {
	l, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				l.Append("job", StageTranslate, "transient", "")
			}
		}()
	}
	wg.Wait()

	if l.Len() != 100 {
		t.Errorf("expected 100 records, got %d", l.Len())
	}
}
