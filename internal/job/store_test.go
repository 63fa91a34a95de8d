package job

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for eviction tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStoreSetGet(t *testing.T) {
	store := NewStore(time.Hour, nil)

	store.Set("job-1", StatusStarting, "queued")
	rec := store.Get("job-1")
	if rec.Status != StatusStarting {
		t.Errorf("expected status %s, got %s", StatusStarting, rec.Status)
	}
	if rec.Message != "queued" {
		t.Errorf("expected message 'queued', got '%s'", rec.Message)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := NewStore(time.Hour, nil)

	store.Set("job-1", StatusStarting, "queued")
	store.Set("job-1", StatusExtracting, "reading document")
	store.Set("job-1", StatusTranslating, "translated 33%")

	rec := store.Get("job-1")
	if rec.Status != StatusTranslating {
		t.Errorf("expected latest status %s, got %s", StatusTranslating, rec.Status)
	}
	if rec.Message != "translated 33%" {
		t.Errorf("expected latest message, got '%s'", rec.Message)
	}
	if store.Len() != 1 {
		t.Errorf("overwrites must not create new records, len=%d", store.Len())
	}
}

func TestStoreUnknownID(t *testing.T) {
	store := NewStore(time.Hour, nil)

	rec := store.Get("no-such-job")
	if rec.Status != StatusUnknown {
		t.Errorf("expected %s for missing id, got %s", StatusUnknown, rec.Status)
	}
	if rec.Message != "" {
		t.Errorf("expected empty message for missing id, got '%s'", rec.Message)
	}
}

func TestStoreRejectsInvalidStatus(t *testing.T) {
	store := NewStore(time.Hour, nil)

	store.Set("job-1", Status("bogus"), "nope")
	if store.Len() != 0 {
		t.Error("invalid status should not be stored")
	}
	if rec := store.Get("job-1"); rec.Status != StatusUnknown {
		t.Errorf("expected %s, got %s", StatusUnknown, rec.Status)
	}
}

func TestStoreProgress(t *testing.T) {
	store := NewStore(time.Hour, nil)

	store.Progress("job-1", 67)
	rec := store.Get("job-1")
	if rec.Status != StatusTranslating {
		t.Errorf("expected %s, got %s", StatusTranslating, rec.Status)
	}
	if rec.Message != "translated 67%" {
		t.Errorf("unexpected progress message '%s'", rec.Message)
	}
}

func TestStoreEviction(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(30*time.Minute, clock.Now)

	store.Set("done", StatusCompleted, "done")
	store.Set("failed", StatusError, "boom")
	store.Set("running", StatusTranslating, "translated 50%")

	// Within retention: nothing goes away.
	clock.Advance(10 * time.Minute)
	if n := store.Sweep(); n != 0 {
		t.Errorf("expected no evictions inside retention, got %d", n)
	}

	// Past retention: terminal records are evicted, running ones stay.
	clock.Advance(25 * time.Minute)
	if n := store.Sweep(); n != 2 {
		t.Errorf("expected 2 evictions, got %d", n)
	}
	if rec := store.Get("done"); rec.Status != StatusUnknown {
		t.Errorf("completed job should be evicted, got %s", rec.Status)
	}
	if rec := store.Get("failed"); rec.Status != StatusUnknown {
		t.Errorf("failed job should be evicted, got %s", rec.Status)
	}
	if rec := store.Get("running"); rec.Status != StatusTranslating {
		t.Errorf("running job must never be evicted, got %s", rec.Status)
	}
}

func TestStoreEvictionOnSet(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(30*time.Minute, clock.Now)

	store.Set("old", StatusCompleted, "done")
	clock.Advance(time.Hour)

	// A Set on another job sweeps expired terminal records as a side effect.
	store.Set("new", StatusStarting, "queued")
	if rec := store.Get("old"); rec.Status != StatusUnknown {
		t.Errorf("expected old job evicted by Set, got %s", rec.Status)
	}
	if rec := store.Get("new"); rec.Status != StatusStarting {
		t.Errorf("expected new job present, got %s", rec.Status)
	}
}

func TestStoreTerminalRecordRefreshedByUpdate(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(30*time.Minute, clock.Now)

	store.Set("job", StatusCompleted, "done")
	clock.Advance(20 * time.Minute)

	// Overwriting resets the eviction timer.
	store.Set("job", StatusCompleted, "done again")
	clock.Advance(20 * time.Minute)
	if n := store.Sweep(); n != 0 {
		t.Errorf("refreshed record should survive, evicted %d", n)
	}
	clock.Advance(15 * time.Minute)
	if n := store.Sweep(); n != 1 {
		t.Errorf("expected eviction after full retention, got %d", n)
	}
}

func TestStatusHelpers(t *testing.T) {
	valid := []Status{StatusStarting, StatusExtracting, StatusTranslating,
		StatusGenerating, StatusCompleted, StatusError}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if StatusUnknown.IsValid() {
		t.Error("unknown is a sentinel, not a settable status")
	}
	if Status("whatever").IsValid() {
		t.Error("arbitrary strings are not valid statuses")
	}

	if !StatusCompleted.IsTerminal() || !StatusError.IsTerminal() {
		t.Error("completed and error are terminal")
	}
	for _, s := range []Status{StatusStarting, StatusExtracting, StatusTranslating, StatusGenerating} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			for j := 0; j < 100; j++ {
				store.Set(id, StatusTranslating, "working")
				store.Get(id)
			}
			store.Set(id, StatusCompleted, "done")
		}(i)
	}
	wg.Wait()

	if store.Len() != 8 {
		t.Errorf("expected 8 records, got %d", store.Len())
	}
}
