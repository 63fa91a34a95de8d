// Package job tracks the status of in-flight translation jobs. Each job
// has exactly one record, overwritten at every pipeline stage boundary and
// polled over HTTP. Finished jobs are evicted after a retention window so
// the store does not grow without bound.
package job

import (
	"fmt"
	"sync"
	"time"

	"office-translator/internal/logger"
)

// Status is the lifecycle stage of a translation job.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusExtracting  Status = "extracting"
	StatusTranslating Status = "translating"
	StatusGenerating  Status = "generating"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"

	// StatusUnknown is returned for job ids the store has no record of.
	StatusUnknown Status = "unknown"
)

// IsValid reports whether s is a status the store accepts.
func (s Status) IsValid() bool {
	switch s {
	case StatusStarting, StatusExtracting, StatusTranslating,
		StatusGenerating, StatusCompleted, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether s marks a finished job. Only terminal records
// are subject to eviction.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Record is the current state of one job.
type Record struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"-"`
}

// Clock supplies the current time. Tests inject a fake to drive eviction.
type Clock func() time.Time

// Store maps job ids to their current record. All methods are safe for
// concurrent use; jobs in flight at the same time use disjoint keys.
type Store struct {
	mu        sync.RWMutex
	records   map[string]Record
	clock     Clock
	retention time.Duration
}

// NewStore creates a Store that evicts terminal records after the given
// retention. A nil clock uses time.Now.
func NewStore(retention time.Duration, clock Clock) *Store {
	if clock == nil {
		clock = time.Now
	}
	if retention <= 0 {
		retention = time.Hour
	}
	return &Store{
		records:   make(map[string]Record),
		clock:     clock,
		retention: retention,
	}
}

// Set overwrites the record for id. No history is kept. Invalid statuses
// are logged and dropped rather than stored.
func (s *Store) Set(id string, status Status, message string) {
	if !status.IsValid() {
		logger.Warn("ignoring invalid job status",
			logger.String("job", id), logger.String("status", string(status)))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = Record{
		Status:    status,
		Message:   message,
		UpdatedAt: s.clock(),
	}
	s.sweepLocked()
}

// Progress records a translating-stage percentage for id.
func (s *Store) Progress(id string, percent int) {
	s.Set(id, StatusTranslating, fmt.Sprintf("translated %d%%", percent))
}

// Get returns the current record for id. Unknown ids get a record with
// StatusUnknown, never an error.
func (s *Store) Get(id string) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.records[id]; ok {
		return rec
	}
	return Record{Status: StatusUnknown}
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Sweep removes terminal records older than the retention window and
// returns how many were evicted. Set calls it implicitly; it is exported
// so callers and tests can force a pass.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// sweepLocked evicts expired terminal records. Caller holds mu.
func (s *Store) sweepLocked() int {
	cutoff := s.clock().Add(-s.retention)
	evicted := 0
	for id, rec := range s.records {
		if rec.Status.IsTerminal() && rec.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
			evicted++
		}
	}
	if evicted > 0 {
		logger.Debug("evicted finished jobs", logger.Int("count", evicted))
	}
	return evicted
}
