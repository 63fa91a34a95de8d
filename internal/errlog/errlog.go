// Package errlog keeps a persistent record of pipeline failures. Every
// error that terminates a job is appended here exactly once, with its
// stage and context, and survives process restarts in errors.json under
// the data directory.
package errlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stage names the pipeline stage a failure happened in.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTranslate Stage = "translate"
	StageGenerate  Stage = "generate"
	StageRequest   Stage = "request"
)

// Record is one persisted failure.
type Record struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Stage     Stage     `json:"stage"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"` // input name, unit counts, whatever helps diagnosis
	Timestamp time.Time `json:"timestamp"`
}

// Log is an append-only store of failure records backed by a JSON file.
type Log struct {
	baseDir string
	mu      sync.RWMutex
	records []Record
}

// New creates a Log rooted at baseDir. An empty baseDir defaults to
// ~/.office-translator. Existing records are loaded so restarts keep
// history.
func New(baseDir string) (*Log, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".office-translator")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create error log directory: %w", err)
	}

	l := &Log{baseDir: baseDir}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Append records a failure and persists the log. Persistence failures are
// returned but the record is kept in memory either way.
func (l *Log) Append(jobID string, stage Stage, message, context string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.records = append(l.records, Record{
		ID:        fmt.Sprintf("err_%d", now.UnixNano()),
		JobID:     jobID,
		Stage:     stage,
		Message:   message,
		Context:   context,
		Timestamp: now,
	})
	return l.save()
}

// List returns a copy of all records, oldest first.
func (l *Log) List() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Log) filePath() string {
	return filepath.Join(l.baseDir, "errors.json")
}

// load reads records from disk. A missing file is normal.
func (l *Log) load() error {
	data, err := os.ReadFile(l.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read error log: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal error log: %w", err)
	}
	l.records = records
	return nil
}

// save writes all records to disk. Caller holds mu.
func (l *Log) save() error {
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal error log: %w", err)
	}
	if err := os.WriteFile(l.filePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
