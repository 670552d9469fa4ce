package scan

import (
	"context"
	"net"
	"sort"
	"strconv"
	"time"
)

// Scan command names understood by the scanner.
const (
	CommandCertificateInfo   = "certificate_info"
	CommandHTTPHeaders       = "http_headers"
	CommandTLS10CipherSuites = "tls_1_0_cipher_suites"
	CommandTLS11CipherSuites = "tls_1_1_cipher_suites"
	CommandTLS12CipherSuites = "tls_1_2_cipher_suites"
	CommandTLS13CipherSuites = "tls_1_3_cipher_suites"
)

// SupportedCommands lists every command the scanner can run, in run order.
var SupportedCommands = []string{
	CommandCertificateInfo,
	CommandHTTPHeaders,
	CommandTLS10CipherSuites,
	CommandTLS11CipherSuites,
	CommandTLS12CipherSuites,
	CommandTLS13CipherSuites,
}

// IsSupported reports whether name is a known scan command.
func IsSupported(name string) bool {
	for _, c := range SupportedCommands {
		if c == name {
			return true
		}
	}
	return false
}

// HostTarget is one configured host entry.
type HostTarget struct {
	Raw      string // entry as configured
	Hostname string // ASCII, lower-cased host name
	Port     int
	Path     string // never empty
}

// Address returns host:port. Scan results are keyed by it.
func (t HostTarget) Address() string {
	return net.JoinHostPort(t.Hostname, strconv.Itoa(t.Port))
}

// URL returns the https URL requested by the health check.
func (t HostTarget) URL() string {
	host := t.Hostname
	if t.Port != 0 && t.Port != 443 {
		host = net.JoinHostPort(t.Hostname, strconv.Itoa(t.Port))
	}
	return "https://" + host + t.Path
}

// BaseURL is URL without the path. Alert titles link to it.
func (t HostTarget) BaseURL() string {
	host := t.Hostname
	if t.Port != 0 && t.Port != 443 {
		host = net.JoinHostPort(t.Hostname, strconv.Itoa(t.Port))
	}
	return "https://" + host
}

// ServerInfo describes a host that passed the connectivity test.
type ServerInfo struct {
	Hostname string
	Port     int
	IP       string
	Path     string
}

// Address returns hostname:port, matching HostTarget.Address.
func (s ServerInfo) Address() string {
	return net.JoinHostPort(s.Hostname, strconv.Itoa(s.Port))
}

// DialAddress is the resolved address the scanner connects to.
func (s ServerInfo) DialAddress() string {
	host := s.IP
	if host == "" {
		host = s.Hostname
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// CertificateDeployment is one certificate chain served by a host.
type CertificateDeployment struct {
	NotValidBefore         time.Time
	NotValidAfter          time.Time
	SubjectMatchesHostname bool
	ChainHasValidOrder     bool

	Subject     string
	Issuer      string
	KeyType     string
	Fingerprint string
	ChainLength int
}

// CertificateInfo is the output of the certificate_info command.
type CertificateInfo struct {
	Deployments []CertificateDeployment
}

// Result is the raw scan output for one host:port. Interrupted is set when
// at least one command was skipped or cut short by cancellation; those
// commands appear in neither CommandErrors nor CommandResults.
type Result struct {
	Hostname        string
	CertificateInfo *CertificateInfo
	CommandErrors   map[string]string
	CommandResults  map[string]string
	Interrupted     bool
}

// NewResult returns an empty result for hostname.
func NewResult(hostname string) Result {
	return Result{
		Hostname:       hostname,
		CommandErrors:  map[string]string{},
		CommandResults: map[string]string{},
	}
}

// FailedCommands returns the names of failed commands, sorted.
func (r Result) FailedCommands() []string {
	names := make([]string, 0, len(r.CommandErrors))
	for name := range r.CommandErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Batch groups one run's targets, the hosts that reached the scan stage,
// and the scan output keyed by host:port.
type Batch struct {
	Targets   []HostTarget
	Reachable []ServerInfo
	Results   map[string]Result
}

// NewBatch starts a batch for targets.
func NewBatch(targets []HostTarget) *Batch {
	return &Batch{Targets: targets, Results: map[string]Result{}}
}

// Accept adds a server that passed the reachability stage.
func (b *Batch) Accept(server ServerInfo) {
	b.Reachable = append(b.Reachable, server)
}

// Result returns the scan output for target.
func (b *Batch) Result(target HostTarget) (Result, bool) {
	r, ok := b.Results[target.Address()]
	return r, ok
}

// Scanner runs scan commands against reachable servers in one batch. The
// returned map is keyed by ServerInfo.Address.
type Scanner interface {
	Scan(ctx context.Context, servers []ServerInfo, commands []string) (map[string]Result, error)
}
