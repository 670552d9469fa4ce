package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	domaincheck "github.com/fivexl/terraform-aws-ssl-checker/internal/domain/check"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "evaluated":
		return colorSuccess(status)
	case "warn":
		return colorWarn(status)
	case "error", "failed":
		return colorError(status)
	default:
		return status
	}
}

// hostStatus is the one-word console status of a host.
func hostStatus(h domaincheck.HostReport) string {
	switch {
	case h.Healthy():
		return "ok"
	case !h.Reachable():
		return "error"
	}
	for _, f := range h.Findings {
		if f.Severity() == finding.SeverityError {
			return "error"
		}
	}
	return "warn"
}

func printSummary(run *domaincheck.Run) {
	hosts := run.Hosts()
	for _, h := range hosts {
		line := fmt.Sprintf("  %-40s %s", h.Target.Raw, formatStatusWithColor(hostStatus(h)))
		if h.HasCertificate {
			line += fmt.Sprintf("  %d days left", h.DaysLeft)
		}
		fmt.Println(line)
		for _, f := range h.Findings {
			fmt.Printf("      %s %s\n", colorWarn("-"), f.Detail())
		}
	}

	healthy, withFindings, unreachable := run.Counts()
	bySeverity := finding.CountBySeverity(run.Findings())
	md := run.Metadata()
	fmt.Printf("\n%s Check run %s complete in %s\n", colorSuccess("✓"), run.ID(), run.Duration().Round(time.Millisecond))
	fmt.Printf("%s Healthy: %d | With findings: %d | Unreachable: %d\n", colorInfo("→"), healthy, withFindings, unreachable)
	fmt.Printf("%s Findings: %s %d | %s %d\n", colorInfo("→"),
		formatStatusWithColor("error"), bySeverity[finding.SeverityError],
		formatStatusWithColor("warn"), bySeverity[finding.SeverityWarn])
	fmt.Printf("%s Notifications sent: %d | failed: %d\n", colorInfo("→"), md.NotificationsSent, md.NotificationsFailed)
	if md.ScanError != "" {
		fmt.Printf("%s Scan error: %s\n", colorError("!"), md.ScanError)
	}
}
