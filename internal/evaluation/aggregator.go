package evaluation

import (
	"time"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

// Aggregate produces the findings for one scanned host. Certificate rules run
// only when certificate_info produced output; every failed command adds one
// ScanCommandFailed finding, in command-name order. Repeated findings
// collapse to one.
func Aggregate(hostname string, result scan.Result, now time.Time, noticeDays int) []finding.Finding {
	var findings []finding.Finding

	if result.CertificateInfo != nil {
		findings = append(findings, EvaluateDeployments(hostname, result.CertificateInfo.Deployments, now, noticeDays)...)
	}

	for _, command := range result.FailedCommands() {
		detail := command + ": " + result.CommandErrors[command]
		findings = append(findings, finding.MustNew(hostname, finding.SeverityError, finding.CategoryScanCommandFailed, detail))
	}

	return finding.Dedupe(findings)
}
