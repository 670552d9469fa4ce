package checker

import (
	"context"
	"fmt"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

// StatusLookup fetches the HTTP status code served at hostname+path.
type StatusLookup interface {
	Status(ctx context.Context, hostname, path string) (int, error)
}

// StatusLookupFunc is a function adapter for the StatusLookup interface.
type StatusLookupFunc func(ctx context.Context, hostname, path string) (int, error)

func (f StatusLookupFunc) Status(ctx context.Context, hostname, path string) (int, error) {
	return f(ctx, hostname, path)
}

// ReachabilityResult is the outcome of a health check against one target.
type ReachabilityResult struct {
	Reachable  bool
	StatusCode int
	Failure    finding.FailureKind
	Detail     string
	Err        error
}

// CheckReachability asks lookup for the target's status code and decides
// whether it is accepted. Lookup failures are reported in the result; they
// never escape as errors so the caller can move on to the next host.
func CheckReachability(ctx context.Context, target scan.HostTarget, accepted StatusSet, lookup StatusLookup) ReachabilityResult {
	host := target.Hostname
	if target.Port != 0 && target.Port != 443 {
		host = target.Address()
	}

	code, err := lookup.Status(ctx, host, target.Path)
	if err != nil {
		return ReachabilityResult{
			Failure: ClassifyError(err),
			Detail:  err.Error(),
			Err:     err,
		}
	}

	if !accepted.Contains(code) {
		return ReachabilityResult{
			StatusCode: code,
			Failure:    finding.FailureHTTPStatus,
			Detail:     fmt.Sprintf("HTTP Error. Status code: %d", code),
		}
	}

	return ReachabilityResult{
		Reachable:  true,
		StatusCode: code,
	}
}
