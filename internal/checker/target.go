package checker

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// ParseTarget parses a configured host entry into a HostTarget.
// This handles various input formats:
//   - example.com
//   - example.com/health
//   - https://example.com:8443/path?x=1
//   - bücher.example (encoded to xn--bcher-kva.example)
//
// Schemes other than https are rejected.
func ParseTarget(raw string) (scan.HostTarget, error) {
	entry := strings.TrimSpace(raw)
	if entry == "" {
		return scan.HostTarget{}, fmt.Errorf("%w: empty host entry", errs.ErrInvalidTarget)
	}

	withScheme := entry
	if idx := strings.Index(entry, "://"); idx >= 0 {
		if !strings.EqualFold(entry[:idx], "https") {
			return scan.HostTarget{}, fmt.Errorf("%w: %q must use https", errs.ErrInvalidTarget, raw)
		}
		withScheme = "https" + entry[idx:]
	} else {
		// without a scheme "example.com:8443" parses as scheme "example.com"
		withScheme = "https://" + entry
	}

	parsed, err := url.Parse(withScheme)
	if err != nil {
		return scan.HostTarget{}, fmt.Errorf("%w: %q: %v", errs.ErrInvalidTarget, raw, err)
	}

	host, err := normalizeHostname(parsed.Hostname())
	if err != nil {
		return scan.HostTarget{}, fmt.Errorf("%w: %q: %v", errs.ErrInvalidTarget, raw, err)
	}

	port := consts.HTTPSPort
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return scan.HostTarget{}, fmt.Errorf("%w: %q: invalid port %q", errs.ErrInvalidTarget, raw, p)
		}
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = consts.DefaultPath
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	return scan.HostTarget{
		Raw:      raw,
		Hostname: host,
		Port:     port,
		Path:     path,
	}, nil
}

// ParseTargets parses a comma separated host list, skipping blank entries.
func ParseTargets(list string) ([]scan.HostTarget, error) {
	var targets []scan.HostTarget
	for _, entry := range strings.Split(list, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		target, err := ParseTarget(entry)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no hosts configured", errs.ErrInvalidTarget)
	}
	return targets, nil
}

func normalizeHostname(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("missing host name")
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	ascii, err := idna.Lookup.ToASCII(strings.ToLower(host))
	if err != nil {
		return "", err
	}
	return ascii, nil
}
