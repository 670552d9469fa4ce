package finding

import (
	"errors"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New("", SeverityError, CategoryExpiringSoon, "x"); err == nil {
		t.Fatal("expected error for empty hostname")
	}
	if _, err := New("a.example", SeverityError, "", "x"); err == nil {
		t.Fatal("expected error for empty category")
	}

	f, err := New("a.example", "", CategorySubjectMismatch, "detail")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Severity() != SeverityError {
		t.Fatalf("expected empty severity to default to error, got %s", f.Severity())
	}
}

func TestUnreachable_DefaultsFailureKind(t *testing.T) {
	f := Unreachable("a.example", FailureNone, "boom")
	if f.Category() != CategoryUnreachable {
		t.Fatalf("expected unreachable category, got %s", f.Category())
	}
	if f.Failure() != FailureOther {
		t.Fatalf("expected failure kind other, got %s", f.Failure())
	}

	f = Unreachable("a.example", FailureDNS, "nxdomain")
	if f.Failure() != FailureDNS {
		t.Fatalf("expected failure kind dns, got %s", f.Failure())
	}
}

func TestGeneric(t *testing.T) {
	f := Generic("a.example", errors.New("kaput"))
	if !f.IsGeneric() || f.Detail() != "kaput" {
		t.Fatalf("unexpected generic finding: %s", f)
	}
	if Generic("a.example", nil).Detail() != "unknown error" {
		t.Fatal("expected placeholder detail for nil error")
	}
}

func TestDedupe(t *testing.T) {
	a := MustNew("a.example", SeverityWarn, CategoryExpiringSoon, "3 days")
	b := MustNew("a.example", SeverityWarn, CategoryExpiringSoon, "3 days")
	c := MustNew("a.example", SeverityWarn, CategoryExpiringSoon, "5 days")
	d := MustNew("b.example", SeverityWarn, CategoryExpiringSoon, "3 days")

	got := Dedupe([]Finding{a, b, c, d})
	if len(got) != 3 {
		t.Fatalf("expected 3 findings after dedupe, got %d", len(got))
	}
	if got[0].Detail() != "3 days" || got[1].Detail() != "5 days" || got[2].Hostname() != "b.example" {
		t.Fatalf("dedupe did not keep first-seen order: %v", got)
	}
}

func TestCountBySeverity(t *testing.T) {
	counts := CountBySeverity([]Finding{
		MustNew("a", SeverityWarn, CategoryExpiringSoon, ""),
		MustNew("a", SeverityError, CategorySubjectMismatch, ""),
		MustNew("b", SeverityError, CategoryChainOrderInvalid, ""),
	})
	if counts[SeverityWarn] != 1 || counts[SeverityError] != 2 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestURL(t *testing.T) {
	f := MustNew("a.example", SeverityWarn, CategoryExpiringSoon, "3 days")
	if f.URL() != "https://a.example" {
		t.Fatalf("default URL = %q", f.URL())
	}
	at := f.At("https://a.example:8443")
	if at.URL() != "https://a.example:8443" {
		t.Fatalf("URL() = %q", at.URL())
	}
	if f.URL() != "https://a.example" {
		t.Fatal("At must not modify the receiver")
	}
}
