package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
)

// Resolver turns a hostname into the addresses the connectivity test dials.
type Resolver interface {
	Resolve(ctx context.Context, hostname string) ([]string, error)
}

// NewResolver returns a NameserverResolver when nameservers are configured
// and the system resolver otherwise.
func NewResolver(nameservers []string, timeout time.Duration) Resolver {
	if len(nameservers) > 0 {
		return &NameserverResolver{Nameservers: nameservers, Timeout: timeout}
	}
	return &SystemResolver{Timeout: timeout}
}

// SystemResolver resolves through the Go resolver and the host's configuration.
type SystemResolver struct {
	Timeout time.Duration
}

// Resolve performs A/AAAA lookups for hostname.
func (r *SystemResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return []string{ip.String()}, nil
	}

	resolver := &net.Resolver{
		PreferGo: true,
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeoutOrDefault(r.Timeout))
	defer cancel()

	addrs, err := resolver.LookupHost(lookupCtx, hostname)
	if err != nil {
		return nil, &LookupError{Kind: finding.FailureDNS, Host: hostname, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &LookupError{Kind: finding.FailureDNS, Host: hostname, Err: fmt.Errorf("no A/AAAA records found for %s", hostname)}
	}
	return addrs, nil
}

// NameserverResolver queries the configured nameservers directly.
// Nameservers are tried in order until one answers.
type NameserverResolver struct {
	Nameservers []string // host:port, port defaults to 53
	Timeout     time.Duration
	Net         string // "udp" (default) or "tcp"
}

// Resolve queries A then AAAA records for hostname.
func (r *NameserverResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return []string{ip.String()}, nil
	}
	if len(r.Nameservers) == 0 {
		return nil, &LookupError{Kind: finding.FailureDNS, Host: hostname, Err: errors.New("no nameservers configured")}
	}

	client := &dns.Client{
		Net:     r.Net,
		Timeout: timeoutOrDefault(r.Timeout),
	}

	var lastErr error
	for _, ns := range r.Nameservers {
		server := withDefaultPort(ns, "53")

		addrs, err := r.query(ctx, client, server, hostname)
		if err == nil {
			return addrs, nil
		}
		lastErr = err

		// NXDOMAIN is authoritative; asking the next server will not help
		var rcodeErr *rcodeError
		if errors.As(err, &rcodeErr) && rcodeErr.rcode == dns.RcodeNameError {
			break
		}
	}

	return nil, &LookupError{Kind: finding.FailureDNS, Host: hostname, Err: lastErr}
}

func (r *NameserverResolver) query(ctx context.Context, client *dns.Client, server, hostname string) ([]string, error) {
	var addrs []string
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(hostname), qtype)
		msg.RecursionDesired = true

		resp, _, err := client.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, fmt.Errorf("query %s for %s: %w", server, hostname, err)
		}
		if resp.Rcode != dns.RcodeSuccess {
			return nil, &rcodeError{host: hostname, server: server, rcode: resp.Rcode}
		}

		for _, rr := range resp.Answer {
			switch rec := rr.(type) {
			case *dns.A:
				addrs = append(addrs, rec.A.String())
			case *dns.AAAA:
				addrs = append(addrs, rec.AAAA.String())
			}
		}
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("no A/AAAA records found for %s at %s", hostname, server)
	}
	return addrs, nil
}

type rcodeError struct {
	host   string
	server string
	rcode  int
}

func (e *rcodeError) Error() string {
	return fmt.Sprintf("lookup %s on %s: %s", e.host, e.server, dns.RcodeToString[e.rcode])
}

func withDefaultPort(addr, port string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, port)
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return consts.DefaultTimeout
	}
	return d
}
