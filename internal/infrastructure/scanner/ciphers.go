package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"sort"
	"strings"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

// Suites reported as weak in cipher enumeration output.
var weakCipherSuites = map[uint16]bool{
	tls.TLS_RSA_WITH_RC4_128_SHA:                true,
	tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA:           true,
	tls.TLS_RSA_WITH_AES_128_CBC_SHA:            true,
	tls.TLS_RSA_WITH_AES_256_CBC_SHA:            true,
	tls.TLS_ECDHE_ECDSA_WITH_RC4_128_SHA:        true,
	tls.TLS_ECDHE_RSA_WITH_RC4_128_SHA:          true,
	tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA:     true,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256: true,
}

// cipherSuitesFor enumerates the suites a server accepts at one protocol
// version, one handshake per candidate suite. TLS 1.3 suites are not
// configurable on the client, so only the negotiated one is reported.
func cipherSuitesFor(version uint16) commandFunc {
	return func(s *Scanner, ctx context.Context, server scan.ServerInfo, out *commandOutput) error {
		if version == tls.VersionTLS13 {
			state, err := s.handshake(ctx, server, &tls.Config{MinVersion: version, MaxVersion: version})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				out.summary = tlsVersionString(version) + ": not accepted"
				return nil
			}
			out.summary = tlsVersionString(version) + ": " + cipherSuiteString(state.CipherSuite)
			return nil
		}

		var accepted []string
		for _, suite := range candidateSuites(version) {
			cfg := &tls.Config{MinVersion: version, MaxVersion: version, CipherSuites: []uint16{suite}}
			state, err := s.handshake(ctx, server, cfg)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				continue
			}
			accepted = append(accepted, cipherSuiteString(state.CipherSuite))
		}

		if len(accepted) == 0 {
			out.summary = tlsVersionString(version) + ": not accepted"
			return nil
		}
		sort.Strings(accepted)
		out.summary = fmt.Sprintf("%s: %s", tlsVersionString(version), strings.Join(accepted, ", "))
		return nil
	}
}

func candidateSuites(version uint16) []uint16 {
	var ids []uint16
	all := append(tls.CipherSuites(), tls.InsecureCipherSuites()...)
	for _, cs := range all {
		for _, v := range cs.SupportedVersions {
			if v == version {
				ids = append(ids, cs.ID)
				break
			}
		}
	}
	return ids
}

// tlsVersionString converts TLS version constant to string
func tlsVersionString(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}

// cipherSuiteString names a suite and flags the weak ones.
func cipherSuiteString(suite uint16) string {
	name := tls.CipherSuiteName(suite)
	if weakCipherSuites[suite] {
		name += " (weak)"
	}
	return name
}
