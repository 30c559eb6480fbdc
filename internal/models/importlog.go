package models

import (
	"time"
)

// ImportStatus represents the status of an import log record
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "PENDING"
	ImportStatusProcessing ImportStatus = "PROCESSING"
	ImportStatusCompleted  ImportStatus = "COMPLETED"
	ImportStatusFailed     ImportStatus = "FAILED"
)

// ImportLog tracks one committed import from enqueue to terminal status.
// Created by the orchestrator in PENDING; mutated only by the worker;
// terminal once COMPLETED or FAILED.
type ImportLog struct {
	ID          string       `json:"id" db:"id"`
	Filename    string       `json:"filename" db:"filename"`
	FileType    string       `json:"file_type" db:"file_type"`
	Status      ImportStatus `json:"status" db:"status"`
	TotalRows   int          `json:"total_rows" db:"total_rows"`
	SuccessRows int          `json:"success_rows" db:"success_rows"`
	ErrorRows   int          `json:"error_rows" db:"error_rows"`
	Progress    int          `json:"progress" db:"progress"`
	Stats       string       `json:"-" db:"stats"`    // JSON blob
	Errors      string       `json:"-" db:"errors"`   // JSON blob
	Metadata    string       `json:"-" db:"metadata"` // column mapping + config, for audit
	UserID      string       `json:"user_id,omitempty" db:"user_id"`
	StartedAt   time.Time    `json:"started_at" db:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	Duration    int          `json:"duration,omitempty" db:"duration"` // seconds
}

// Terminal reports whether the import log reached a final status
func (l *ImportLog) Terminal() bool {
	return l.Status == ImportStatusCompleted || l.Status == ImportStatusFailed
}

// ImportError is one captured row-level error, persisted per import log
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// JobStatusResponse is the status endpoint payload
type JobStatusResponse struct {
	ImportLog *ImportLog    `json:"importLog"`
	Errors    []ImportError `json:"errors,omitempty"`
}
