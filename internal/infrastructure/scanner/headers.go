package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
)

const headerHSTS = "Strict-Transport-Security"

// httpHeaders fetches the configured path and reports the HSTS policy.
func (s *Scanner) httpHeaders(ctx context.Context, server scan.ServerInfo, out *commandOutput) error {
	path := server.Path
	if path == "" {
		path = consts.DefaultPath
	}
	host := server.Hostname
	if server.Port != consts.HTTPSPort {
		host = net.JoinHostPort(server.Hostname, fmt.Sprint(server.Port))
	}

	dialer := &net.Dialer{Timeout: s.timeout()}
	client := &http.Client{
		Timeout: s.timeout(),
		Transport: &http.Transport{
			// always connect to the address that passed the connectivity test
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, network, server.DialAddress())
			},
			TLSClientConfig: &tls.Config{
				ServerName:         server.Hostname,
				InsecureSkipVerify: true, //nolint:gosec // headers only
			},
			TLSHandshakeTimeout: s.timeout(),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+host+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, consts.BodySnippetLimitBytes))

	out.summary = summarizeHSTS(resp.Header.Get(headerHSTS))
	return nil
}

func summarizeHSTS(value string) string {
	if strings.TrimSpace(value) == "" {
		return headerHSTS + ": missing"
	}
	return headerHSTS + ": " + value
}
