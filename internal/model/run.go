package model

import (
	"encoding/json"
	"time"
)

// RunStatus represents the state of a recorded pipeline stage run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded execution of a pipeline stage.
type Run struct {
	ID          string          `json:"id"`
	Stage       string          `json:"stage"`
	Status      RunStatus       `json:"status"`
	Report      json.RawMessage `json:"report,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
