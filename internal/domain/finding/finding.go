package finding

import (
	"errors"
	"fmt"
)

// Severity ranks how urgent a finding is.
type Severity string

const (
	SeverityOK    Severity = "ok"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Category identifies the condition a finding reports.
type Category string

const (
	CategoryUnreachable       Category = "unreachable"
	CategoryNotYetValid       Category = "not_yet_valid"
	CategoryExpiringSoon      Category = "expiring_soon"
	CategorySubjectMismatch   Category = "subject_mismatch"
	CategoryChainOrderInvalid Category = "chain_order_invalid"
	CategoryScanCommandFailed Category = "scan_command_failed"
	CategoryGenericError      Category = "generic_error"
)

// FailureKind classifies why a host was unreachable.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureDNS        FailureKind = "dns"
	FailureConnect    FailureKind = "connect"
	FailureTLS        FailureKind = "tls"
	FailureHTTPStatus FailureKind = "http_status"
	FailureOther      FailureKind = "other"
)

// Finding is a single alertable condition for one host.
type Finding struct {
	hostname string
	severity Severity
	category Category
	detail   string
	failure  FailureKind
	url      string
}

// New creates a finding. Hostname and category are mandatory.
func New(hostname string, severity Severity, category Category, detail string) (Finding, error) {
	if hostname == "" {
		return Finding{}, errors.New("finding hostname cannot be empty")
	}
	if category == "" {
		return Finding{}, errors.New("finding category cannot be empty")
	}
	if severity == "" {
		severity = SeverityError
	}
	return Finding{
		hostname: hostname,
		severity: severity,
		category: category,
		detail:   detail,
	}, nil
}

// MustNew is New for callers that build findings from known-good values.
func MustNew(hostname string, severity Severity, category Category, detail string) Finding {
	f, err := New(hostname, severity, category, detail)
	if err != nil {
		panic(err)
	}
	return f
}

// Unreachable builds the finding emitted when a host fails before scanning.
func Unreachable(hostname string, kind FailureKind, detail string) Finding {
	f := MustNew(hostname, SeverityError, CategoryUnreachable, detail)
	if kind == FailureNone {
		kind = FailureOther
	}
	f.failure = kind
	return f
}

// Generic builds a finding for an unexpected error scoped to one host.
func Generic(hostname string, err error) Finding {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return MustNew(hostname, SeverityError, CategoryGenericError, detail)
}

// Getters

func (f Finding) Hostname() string {
	return f.hostname
}

func (f Finding) Severity() Severity {
	return f.severity
}

func (f Finding) Category() Category {
	return f.category
}

func (f Finding) Detail() string {
	return f.detail
}

func (f Finding) Failure() FailureKind {
	return f.failure
}

// URL is the address alerts link to. It defaults to https://<hostname>.
func (f Finding) URL() string {
	if f.url != "" {
		return f.url
	}
	return "https://" + f.hostname
}

// At returns a copy of f linking to url, e.g. "https://a.example:8443".
func (f Finding) At(url string) Finding {
	f.url = url
	return f
}

// IsGeneric reports whether the finding carries an unclassified error.
func (f Finding) IsGeneric() bool {
	return f.category == CategoryGenericError
}

// Same reports whether two findings describe the same condition on the same host.
func (f Finding) Same(other Finding) bool {
	return f.hostname == other.hostname &&
		f.category == other.category &&
		f.detail == other.detail &&
		f.failure == other.failure
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s/%s] %s", f.hostname, f.severity, f.category, f.detail)
}

// Dedupe drops findings that repeat an earlier one, keeping first-seen order.
func Dedupe(findings []Finding) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		dup := false
		for _, seen := range out {
			if seen.Same(f) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, f := range findings {
		counts[f.severity]++
	}
	return counts
}
