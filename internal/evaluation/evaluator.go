// Package evaluation turns raw scan output into findings.
package evaluation

import (
	"fmt"
	"math"
	"time"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

const (
	detailSubjectMismatch = "SSL certificate no subject matches."
	detailChainOrder      = "SSL certificate chain has no valid order."
)

// DaysUntil returns the whole days from now until t, rounded down.
// A certificate expiring in 36 hours has 1 day left; one that expired an
// hour ago has -1.
func DaysUntil(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

// Evaluate applies the validity-window rules to one certificate deployment.
// The not-yet-valid and expiry rules are independent; both may fire.
func Evaluate(hostname string, window scan.CertificateDeployment, now time.Time, noticeDays int) []finding.Finding {
	var findings []finding.Finding

	if now.Before(window.NotValidBefore) {
		detail := fmt.Sprintf("SSL certificate not valid before: %s. Now is: %s",
			window.NotValidBefore.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
		findings = append(findings, finding.MustNew(hostname, finding.SeverityError, finding.CategoryNotYetValid, detail))
	}

	days := DaysUntil(window.NotValidAfter, now)
	if days <= noticeDays {
		severity := finding.SeverityWarn
		detail := fmt.Sprintf("SSL certificate expires in less than: %d days.", days)
		if days < 0 {
			severity = finding.SeverityError
			detail = fmt.Sprintf("SSL certificate expired %d days ago.", -days)
		}
		findings = append(findings, finding.MustNew(hostname, severity, finding.CategoryExpiringSoon, detail))
	}

	return findings
}

// AnySubjectMatches reports whether at least one deployment's leaf matches
// the hostname. False for an empty list.
func AnySubjectMatches(deployments []scan.CertificateDeployment) bool {
	for _, d := range deployments {
		if d.SubjectMatchesHostname {
			return true
		}
	}
	return false
}

// AllChainsValid reports whether every deployment sends its chain in order.
// True for an empty list.
func AllChainsValid(deployments []scan.CertificateDeployment) bool {
	for _, d := range deployments {
		if !d.ChainHasValidOrder {
			return false
		}
	}
	return true
}

// EvaluateDeployments evaluates every deployment of a host, then adds at most
// one subject-mismatch and one chain-order finding for the host as a whole.
func EvaluateDeployments(hostname string, deployments []scan.CertificateDeployment, now time.Time, noticeDays int) []finding.Finding {
	var findings []finding.Finding
	for _, d := range deployments {
		findings = append(findings, Evaluate(hostname, d, now, noticeDays)...)
	}

	if !AnySubjectMatches(deployments) {
		findings = append(findings, finding.MustNew(hostname, finding.SeverityError, finding.CategorySubjectMismatch, detailSubjectMismatch))
	}
	if !AllChainsValid(deployments) {
		findings = append(findings, finding.MustNew(hostname, finding.SeverityError, finding.CategoryChainOrderInvalid, detailChainOrder))
	}
	return findings
}

// MinDaysLeft returns the smallest DaysUntil across deployments and false
// when there are none.
func MinDaysLeft(deployments []scan.CertificateDeployment, now time.Time) (int, bool) {
	if len(deployments) == 0 {
		return 0, false
	}
	least := DaysUntil(deployments[0].NotValidAfter, now)
	for _, d := range deployments[1:] {
		if days := DaysUntil(d.NotValidAfter, now); days < least {
			least = days
		}
	}
	return least, true
}
