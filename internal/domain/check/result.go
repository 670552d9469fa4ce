package check

import (
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

// HostState is the position of a host in the check pipeline.
type HostState string

const (
	HostStatePending    HostState = "pending"
	HostStateDNSChecked HostState = "dns_checked"
	HostStateConnected  HostState = "connected"
	HostStateScanned    HostState = "scanned"
	HostStateEvaluated  HostState = "evaluated"
	HostStateFailed     HostState = "failed"
)

var hostTransitions = map[HostState][]HostState{
	HostStatePending:    {HostStateDNSChecked, HostStateFailed},
	HostStateDNSChecked: {HostStateConnected, HostStateFailed},
	HostStateConnected:  {HostStateScanned, HostStateFailed},
	HostStateScanned:    {HostStateEvaluated, HostStateFailed},
}

// CanTransition reports whether the pipeline may move from s to next.
func (s HostState) CanTransition(next HostState) bool {
	for _, allowed := range hostTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s HostState) Terminal() bool {
	return s == HostStateEvaluated || s == HostStateFailed
}

// HostReport is the outcome of one configured host.
type HostReport struct {
	Target     scan.HostTarget
	State      HostState
	Failure    finding.FailureKind // set when State is failed
	StatusCode int
	Findings   []finding.Finding

	// DaysLeft is the smallest whole-day validity left across the host's
	// certificates; meaningful only when HasCertificate is true.
	DaysLeft       int
	HasCertificate bool
}

// Reachable reports whether the host passed DNS, connectivity and the
// health check.
func (h HostReport) Reachable() bool {
	switch h.State {
	case HostStateConnected, HostStateScanned, HostStateEvaluated:
		return true
	}
	return false
}

// Healthy reports whether the host was fully evaluated without findings.
func (h HostReport) Healthy() bool {
	return h.State == HostStateEvaluated && len(h.Findings) == 0
}
