package check

import (
	"errors"
	"fmt"
	"time"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
)

// Run represents one pass over every configured host.
// It serves as an aggregate root that owns the per-host reports.
type Run struct {
	id          string
	startedAt   time.Time
	completedAt time.Time
	status      RunStatus
	hosts       []HostReport
	metadata    Metadata
}

// RunStatus represents the status of a run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Metadata contains additional information about the run
type Metadata struct {
	NotificationsSent   int
	NotificationsFailed int
	ScanError           string
}

// NewRun creates a pending run
func NewRun() *Run {
	return &Run{
		id:     generateRunID(),
		status: RunStatusPending,
	}
}

// Business methods

// Start marks the run as running
func (r *Run) Start() error {
	if r.status != RunStatusPending {
		return errors.New("run can only be started from pending status")
	}
	r.status = RunStatusRunning
	r.startedAt = time.Now()
	return nil
}

// Complete stores the host reports and marks the run as completed
func (r *Run) Complete(hosts []HostReport) error {
	if r.status != RunStatusRunning {
		return errors.New("run can only be completed from running status")
	}
	for _, h := range hosts {
		if !h.State.Terminal() {
			return errors.New("cannot complete a run with unfinished hosts")
		}
	}
	r.hosts = hosts
	r.status = RunStatusCompleted
	r.completedAt = time.Now()
	return nil
}

// Fail marks the run as failed
func (r *Run) Fail() error {
	if r.status == RunStatusCompleted {
		return errors.New("cannot fail a completed run")
	}
	r.status = RunStatusFailed
	r.completedAt = time.Now()
	return nil
}

// RecordNotification counts one delivery attempt
func (r *Run) RecordNotification(err error) {
	if err != nil {
		r.metadata.NotificationsFailed++
		return
	}
	r.metadata.NotificationsSent++
}

// SetScanError records a batch-level scanner failure
func (r *Run) SetScanError(err error) {
	if err != nil {
		r.metadata.ScanError = err.Error()
	}
}

// Findings returns every finding in host configuration order
func (r *Run) Findings() []finding.Finding {
	var out []finding.Finding
	for _, h := range r.hosts {
		out = append(out, h.Findings...)
	}
	return out
}

// Counts tallies hosts by outcome
func (r *Run) Counts() (healthy, withFindings, unreachable int) {
	for _, h := range r.hosts {
		switch {
		case h.Healthy():
			healthy++
		case h.Reachable():
			withFindings++
		default:
			unreachable++
		}
	}
	return healthy, withFindings, unreachable
}

// Getters

func (r *Run) ID() string {
	return r.id
}

func (r *Run) StartedAt() time.Time {
	return r.startedAt
}

func (r *Run) CompletedAt() time.Time {
	return r.completedAt
}

func (r *Run) Duration() time.Duration {
	if r.completedAt.IsZero() {
		return 0
	}
	return r.completedAt.Sub(r.startedAt)
}

func (r *Run) Status() RunStatus {
	return r.status
}

func (r *Run) Hosts() []HostReport {
	// Return a copy to prevent external modification
	hostsCopy := make([]HostReport, len(r.hosts))
	copy(hostsCopy, r.hosts)
	return hostsCopy
}

func (r *Run) Metadata() Metadata {
	return r.metadata
}

// Helper function to generate run IDs
func generateRunID() string {
	now := time.Now()
	return fmt.Sprintf("run-%s-%06d", now.Format("20060102150405"), now.Nanosecond()/1000)
}
