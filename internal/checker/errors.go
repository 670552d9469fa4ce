package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// LookupError is a network failure already classified by the component
// that observed it.
type LookupError struct {
	Kind finding.FailureKind
	Host string
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Host, e.Kind)
	}
	return e.Err.Error()
}

func (e *LookupError) Unwrap() []error {
	var out []error
	if e.Err != nil {
		out = append(out, e.Err)
	}
	if sentinel := sentinelFor(e.Kind); sentinel != nil {
		out = append(out, sentinel)
	}
	return out
}

func sentinelFor(kind finding.FailureKind) error {
	switch kind {
	case finding.FailureDNS:
		return errs.ErrDNSFailure
	case finding.FailureConnect:
		return errs.ErrConnectFailure
	case finding.FailureTLS:
		return errs.ErrTLSFailure
	case finding.FailureHTTPStatus:
		return errs.ErrHTTPStatusMismatch
	}
	return nil
}

// ClassifyError maps a network error onto a failure kind.
func ClassifyError(err error) finding.FailureKind {
	if err == nil {
		return finding.FailureNone
	}

	var lookupErr *LookupError
	if errors.As(err, &lookupErr) && lookupErr.Kind != finding.FailureNone {
		return lookupErr.Kind
	}

	switch {
	case errors.Is(err, errs.ErrDNSFailure):
		return finding.FailureDNS
	case errors.Is(err, errs.ErrConnectFailure):
		return finding.FailureConnect
	case errors.Is(err, errs.ErrTLSFailure):
		return finding.FailureTLS
	case errors.Is(err, errs.ErrHTTPStatusMismatch):
		return finding.FailureHTTPStatus
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return finding.FailureDNS
	}

	if isTLSError(err) {
		return finding.FailureTLS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return finding.FailureConnect
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return finding.FailureConnect
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return finding.FailureConnect
	}

	return finding.FailureOther
}

func isTLSError(err error) bool {
	var (
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	return errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}
