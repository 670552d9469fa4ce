package evaluation

import (
	"strings"
	"testing"
	"time"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

const day = 24 * time.Hour

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func window(before, after time.Duration) scan.CertificateDeployment {
	return scan.CertificateDeployment{
		NotValidBefore:         now.Add(before),
		NotValidAfter:          now.Add(after),
		SubjectMatchesHostname: true,
		ChainHasValidOrder:     true,
	}
}

func categories(findings []finding.Finding) []finding.Category {
	out := make([]finding.Category, len(findings))
	for i, f := range findings {
		out[i] = f.Category()
	}
	return out
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name  string
		delta time.Duration
		want  int
	}{
		{name: "exact days", delta: 7 * day, want: 7},
		{name: "partial day rounds down", delta: 36 * time.Hour, want: 1},
		{name: "under a day", delta: time.Hour, want: 0},
		{name: "now", delta: 0, want: 0},
		{name: "just expired", delta: -time.Hour, want: -1},
		{name: "expired days ago", delta: -(3*day + time.Hour), want: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(now.Add(tt.delta), now); got != tt.want {
				t.Errorf("DaysUntil(%v) = %d, want %d", tt.delta, got, tt.want)
			}
		})
	}
}

func TestEvaluate_ExactBoundaryTriggers(t *testing.T) {
	for _, notice := range []int{0, 1, 7, 30} {
		// now == not_valid_after - notice days
		w := window(-day, time.Duration(notice)*day)
		findings := Evaluate("a.example", w, now, notice)
		if len(findings) != 1 || findings[0].Category() != finding.CategoryExpiringSoon {
			t.Fatalf("notice %d: expected one ExpiringSoon finding, got %v", notice, findings)
		}
	}
}

func TestEvaluate_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		after        time.Duration
		wantFinding  bool
		wantSeverity finding.Severity
		wantDetail   string
	}{
		{name: "well within validity", after: 60 * day, wantFinding: false},
		{name: "one day past threshold", after: 8 * day, wantFinding: false},
		{name: "three days left", after: 3 * day, wantFinding: true, wantSeverity: finding.SeverityWarn, wantDetail: "SSL certificate expires in less than: 3 days."},
		{name: "hours left", after: 5 * time.Hour, wantFinding: true, wantSeverity: finding.SeverityWarn, wantDetail: "SSL certificate expires in less than: 0 days."},
		{name: "expired", after: -2 * day, wantFinding: true, wantSeverity: finding.SeverityError, wantDetail: "SSL certificate expired 2 days ago."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Evaluate("a.example", window(-30*day, tt.after), now, 7)
			if !tt.wantFinding {
				if len(findings) != 0 {
					t.Fatalf("expected no findings, got %v", findings)
				}
				return
			}
			if len(findings) != 1 {
				t.Fatalf("expected one finding, got %v", findings)
			}
			f := findings[0]
			if f.Category() != finding.CategoryExpiringSoon {
				t.Errorf("category = %s", f.Category())
			}
			if f.Severity() != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", f.Severity(), tt.wantSeverity)
			}
			if f.Detail() != tt.wantDetail {
				t.Errorf("detail = %q, want %q", f.Detail(), tt.wantDetail)
			}
			if f.Hostname() != "a.example" {
				t.Errorf("hostname = %q", f.Hostname())
			}
		})
	}
}

func TestEvaluate_NotYetValidIsIndependent(t *testing.T) {
	// Not valid yet and also expiring inside the notice window.
	findings := Evaluate("a.example", window(2*day, 3*day), now, 7)
	got := categories(findings)
	if len(got) != 2 || got[0] != finding.CategoryNotYetValid || got[1] != finding.CategoryExpiringSoon {
		t.Fatalf("expected NotYetValid and ExpiringSoon, got %v", got)
	}

	// Not valid yet, expiry far away.
	findings = Evaluate("a.example", window(2*day, 365*day), now, 7)
	if len(findings) != 1 || findings[0].Category() != finding.CategoryNotYetValid {
		t.Fatalf("expected only NotYetValid, got %v", findings)
	}
	if !strings.Contains(findings[0].Detail(), "2024-05-03T12:00:00Z") || !strings.Contains(findings[0].Detail(), "2024-05-01T12:00:00Z") {
		t.Fatalf("detail should carry both timestamps: %q", findings[0].Detail())
	}
	if findings[0].Severity() != finding.SeverityError {
		t.Fatalf("expected error severity, got %s", findings[0].Severity())
	}
}

func TestAggregatePredicates(t *testing.T) {
	match := scan.CertificateDeployment{SubjectMatchesHostname: true, ChainHasValidOrder: true}
	bad := scan.CertificateDeployment{}

	tests := []struct {
		name       string
		in         []scan.CertificateDeployment
		wantAny    bool
		wantChains bool
	}{
		{name: "empty", in: nil, wantAny: false, wantChains: true},
		{name: "all good", in: []scan.CertificateDeployment{match, match}, wantAny: true, wantChains: true},
		{name: "mixed", in: []scan.CertificateDeployment{match, bad}, wantAny: true, wantChains: false},
		{name: "all bad", in: []scan.CertificateDeployment{bad, bad}, wantAny: false, wantChains: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnySubjectMatches(tt.in); got != tt.wantAny {
				t.Errorf("AnySubjectMatches = %v, want %v", got, tt.wantAny)
			}
			if got := AllChainsValid(tt.in); got != tt.wantChains {
				t.Errorf("AllChainsValid = %v, want %v", got, tt.wantChains)
			}
		})
	}
}

func TestEvaluateDeployments_OneSubjectMismatch(t *testing.T) {
	a := window(-day, 90*day)
	a.SubjectMatchesHostname = false
	b := window(-day, 90*day)
	b.SubjectMatchesHostname = false

	findings := EvaluateDeployments("a.example", []scan.CertificateDeployment{a, b}, now, 7)
	if len(findings) != 1 || findings[0].Category() != finding.CategorySubjectMismatch {
		t.Fatalf("expected exactly one SubjectMismatch, got %v", findings)
	}
	if findings[0].Detail() != "SSL certificate no subject matches." {
		t.Fatalf("unexpected detail %q", findings[0].Detail())
	}
}

func TestEvaluateDeployments_OneChainOrderInvalid(t *testing.T) {
	a := window(-day, 90*day)
	b := window(-day, 90*day)
	b.ChainHasValidOrder = false

	findings := EvaluateDeployments("a.example", []scan.CertificateDeployment{a, b}, now, 7)
	if len(findings) != 1 || findings[0].Category() != finding.CategoryChainOrderInvalid {
		t.Fatalf("expected exactly one ChainOrderInvalid, got %v", findings)
	}
}

func TestEvaluateDeployments_AggregateRulesIndependentOfExpiry(t *testing.T) {
	a := window(-day, 2*day)
	a.SubjectMatchesHostname = false
	a.ChainHasValidOrder = false

	got := categories(EvaluateDeployments("a.example", []scan.CertificateDeployment{a}, now, 7))
	want := []finding.Category{finding.CategoryExpiringSoon, finding.CategorySubjectMismatch, finding.CategoryChainOrderInvalid}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEvaluateDeployments_Empty(t *testing.T) {
	got := categories(EvaluateDeployments("a.example", nil, now, 7))
	if len(got) != 1 || got[0] != finding.CategorySubjectMismatch {
		t.Fatalf("expected subject mismatch for no deployments, got %v", got)
	}
}

func TestMinDaysLeft(t *testing.T) {
	if _, ok := MinDaysLeft(nil, now); ok {
		t.Fatal("expected no value for empty deployments")
	}
	days, ok := MinDaysLeft([]scan.CertificateDeployment{window(-day, 40*day), window(-day, 12*day)}, now)
	if !ok || days != 12 {
		t.Fatalf("MinDaysLeft = %d, %v", days, ok)
	}
}
