package cmd

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/fivexl/terraform-aws-ssl-checker/cmd/testutil"
	domaincheck "github.com/fivexl/terraform-aws-ssl-checker/internal/domain/check"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

func disableColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})
}

func TestFormatStatusWithColor(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name   string
		status string
		want   string
	}{
		{name: "success", status: "OK", want: "OK"},
		{name: "warning", status: "warn", want: "warn"},
		{name: "failure", status: "FAILED", want: "FAILED"},
		{name: "unknown", status: "pending", want: "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStatusWithColor(tt.status); got != tt.want {
				t.Fatalf("formatStatusWithColor(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestHostStatus(t *testing.T) {
	target := scan.HostTarget{Raw: "a.example", Hostname: "a.example", Port: 443, Path: "/"}
	warn := finding.MustNew("a.example", finding.SeverityWarn, finding.CategoryExpiringSoon, "SSL certificate expires in less than: 3 days.")
	expired := finding.MustNew("a.example", finding.SeverityError, finding.CategoryExpiringSoon, "SSL certificate expired 2 days ago.")

	tests := []struct {
		name   string
		report domaincheck.HostReport
		want   string
	}{
		{name: "healthy", report: domaincheck.HostReport{Target: target, State: domaincheck.HostStateEvaluated}, want: "ok"},
		{name: "warning", report: domaincheck.HostReport{Target: target, State: domaincheck.HostStateEvaluated, Findings: []finding.Finding{warn}}, want: "warn"},
		{name: "error finding", report: domaincheck.HostReport{Target: target, State: domaincheck.HostStateEvaluated, Findings: []finding.Finding{warn, expired}}, want: "error"},
		{name: "unreachable", report: domaincheck.HostReport{Target: target, State: domaincheck.HostStateFailed}, want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hostStatus(tt.report); got != tt.want {
				t.Fatalf("hostStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	disableColor(t)

	run := domaincheck.NewRun()
	if err := run.Start(); err != nil {
		t.Fatal(err)
	}
	hosts := []domaincheck.HostReport{
		{
			Target:         scan.HostTarget{Raw: "a.example", Hostname: "a.example", Port: 443, Path: "/"},
			State:          domaincheck.HostStateEvaluated,
			HasCertificate: true,
			DaysLeft:       42,
		},
		{
			Target:  scan.HostTarget{Raw: "b.example", Hostname: "b.example", Port: 443, Path: "/"},
			State:   domaincheck.HostStateFailed,
			Failure: finding.FailureDNS,
			Findings: []finding.Finding{
				finding.Unreachable("b.example", finding.FailureDNS, "URL is not available! DNS error: no such host"),
			},
		},
	}
	run.RecordNotification(nil)
	if err := run.Complete(hosts); err != nil {
		t.Fatal(err)
	}

	out := testutil.CaptureStdout(t, func() { printSummary(run) })

	for _, want := range []string{
		"a.example", "42 days left",
		"URL is not available! DNS error: no such host",
		"Healthy: 1 | With findings: 0 | Unreachable: 1",
		"Findings: error 1 | warn 0",
		"Check run " + run.ID() + " complete",
		"Notifications sent: 1 | failed: 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
