package scanner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// TLS 1.2 suites restricted to one certificate key type so a server holding
// both an RSA and an ECDSA certificate reveals each of them.
var (
	rsaOnlySuites = []uint16{
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
		tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
		tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
	}
	ecdsaOnlySuites = []uint16{
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA,
	}
)

func deploymentHandshakes() []*tls.Config {
	return []*tls.Config{
		{MinVersion: tls.VersionTLS10},
		{MinVersion: tls.VersionTLS12, MaxVersion: tls.VersionTLS12, CipherSuites: rsaOnlySuites},
		{MinVersion: tls.VersionTLS12, MaxVersion: tls.VersionTLS12, CipherSuites: ecdsaOnlySuites},
	}
}

// certificateInfo collects every distinct certificate chain the server hands
// out. Deployments are keyed by the leaf fingerprint.
func (s *Scanner) certificateInfo(ctx context.Context, server scan.ServerInfo, out *commandOutput) error {
	info := &scan.CertificateInfo{}
	seen := map[string]bool{}
	var failures []error

	for _, cfg := range deploymentHandshakes() {
		state, err := s.handshake(ctx, server, cfg)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if len(state.PeerCertificates) == 0 {
			continue
		}

		dep := newDeployment(server.Hostname, state.PeerCertificates)
		if seen[dep.Fingerprint] {
			continue
		}
		seen[dep.Fingerprint] = true
		info.Deployments = append(info.Deployments, dep)
	}

	if len(info.Deployments) == 0 {
		if len(failures) > 0 {
			return fmt.Errorf("%w: %w", errs.ErrScanCommandFailed, errors.Join(failures...))
		}
		return errs.ErrNoCertificates
	}

	out.certs = info
	out.summary = fmt.Sprintf("%d certificate deployment(s)", len(info.Deployments))
	return nil
}

func newDeployment(hostname string, chain []*x509.Certificate) scan.CertificateDeployment {
	leaf := chain[0]
	sum := sha256.Sum256(leaf.Raw)

	return scan.CertificateDeployment{
		NotValidBefore:         leaf.NotBefore,
		NotValidAfter:          leaf.NotAfter,
		SubjectMatchesHostname: leaf.VerifyHostname(hostname) == nil,
		ChainHasValidOrder:     chainHasValidOrder(chain),
		Subject:                leaf.Subject.String(),
		Issuer:                 leaf.Issuer.String(),
		KeyType:                leaf.PublicKeyAlgorithm.String(),
		Fingerprint:            hex.EncodeToString(sum[:]),
		ChainLength:            len(chain),
	}
}

// chainHasValidOrder reports whether every certificate is issued by the one
// that follows it.
func chainHasValidOrder(chain []*x509.Certificate) bool {
	for i := 0; i+1 < len(chain); i++ {
		child, parent := chain[i], chain[i+1]
		if !bytes.Equal(child.RawIssuer, parent.RawSubject) {
			return false
		}
		if err := child.CheckSignatureFrom(parent); err != nil {
			var insecure x509.InsecureAlgorithmError
			if !errors.As(err, &insecure) {
				return false
			}
		}
	}
	return true
}
