package checker

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

func fixedStatus(code int) StatusLookup {
	return StatusLookupFunc(func(ctx context.Context, hostname, path string) (int, error) {
		return code, nil
	})
}

func TestCheckReachability_StatusMembership(t *testing.T) {
	accepted := MustParseStatusSet("200-399")
	target := scan.HostTarget{Hostname: "a.example", Port: 443, Path: "/"}

	for _, code := range []int{100, 199, 200, 204, 301, 399, 400, 404, 500, 503} {
		res := CheckReachability(context.Background(), target, accepted, fixedStatus(code))
		if res.Reachable != accepted.Contains(code) {
			t.Fatalf("status %d: Reachable = %v, want %v", code, res.Reachable, accepted.Contains(code))
		}
		if res.StatusCode != code {
			t.Fatalf("status %d: StatusCode = %d", code, res.StatusCode)
		}
		if !res.Reachable {
			if res.Failure != finding.FailureHTTPStatus {
				t.Fatalf("status %d: Failure = %q, want http_status", code, res.Failure)
			}
			if !strings.Contains(res.Detail, "Status code: ") {
				t.Fatalf("status %d: detail %q does not embed the observed code", code, res.Detail)
			}
		}
	}
}

func TestCheckReachability_Unreachable500(t *testing.T) {
	res := CheckReachability(context.Background(),
		scan.HostTarget{Hostname: "a.example", Port: 443, Path: "/"},
		MustParseStatusSet("200-399"),
		fixedStatus(500))

	if res.Reachable {
		t.Fatal("expected 500 to be unreachable")
	}
	if res.Detail != "HTTP Error. Status code: 500" {
		t.Fatalf("unexpected detail %q", res.Detail)
	}
}

func TestCheckReachability_LookupFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want finding.FailureKind
	}{
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "a.example"}, want: finding.FailureDNS},
		{name: "connect", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, want: finding.FailureConnect},
		{name: "other", err: errors.New("malformed response"), want: finding.FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := StatusLookupFunc(func(ctx context.Context, hostname, path string) (int, error) {
				return 0, tt.err
			})
			res := CheckReachability(context.Background(),
				scan.HostTarget{Hostname: "a.example", Port: 443, Path: "/"},
				MustParseStatusSet("200"),
				lookup)

			if res.Reachable {
				t.Fatal("expected lookup failure to be unreachable")
			}
			if res.Failure != tt.want {
				t.Fatalf("Failure = %q, want %q", res.Failure, tt.want)
			}
			if res.Detail != tt.err.Error() {
				t.Fatalf("Detail = %q, want %q", res.Detail, tt.err.Error())
			}
		})
	}
}

func TestCheckReachability_PassesHostAndPath(t *testing.T) {
	var gotHost, gotPath string
	lookup := StatusLookupFunc(func(ctx context.Context, hostname, path string) (int, error) {
		gotHost, gotPath = hostname, path
		return 200, nil
	})

	CheckReachability(context.Background(),
		scan.HostTarget{Hostname: "a.example", Port: 8443, Path: "/health"},
		MustParseStatusSet("200"),
		lookup)

	if gotHost != "a.example:8443" || gotPath != "/health" {
		t.Fatalf("lookup called with %q %q", gotHost, gotPath)
	}
}
