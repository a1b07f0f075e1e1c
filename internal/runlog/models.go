package runlog

import (
	"errors"
	"time"
)

// Status is the coarse outcome of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// InterruptedReason is recorded for runs left running by a previous process.
const InterruptedReason = "Interrupted before completion"

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Run is one persisted pipeline run.
type Run struct {
	ID            string     `json:"id"`
	SourceName    string     `json:"source_name"`
	SourcePath    string     `json:"source_path,omitempty"`
	OutputPath    string     `json:"output_path,omitempty"`
	Status        Status     `json:"status"`
	State         string     `json:"state"`
	Transcript    string     `json:"transcript,omitempty"`
	Corrected     string     `json:"corrected,omitempty"`
	ErrorKind     string     `json:"error_kind,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	AudioChannels int        `json:"audio_channels,omitempty"`
	VideoSeconds  float64    `json:"video_seconds,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Elapsed returns how long the run took, or has taken so far.
func (r Run) Elapsed() time.Duration {
	end := time.Now()
	if r.FinishedAt != nil {
		end = *r.FinishedAt
	}
	if r.CreatedAt.IsZero() || end.Before(r.CreatedAt) {
		return 0
	}
	return end.Sub(r.CreatedAt)
}

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}
