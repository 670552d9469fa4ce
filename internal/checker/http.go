package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
)

// HTTPStatusLookup performs the HTTPS GET used as the host health check.
type HTTPStatusLookup struct {
	Timeout time.Duration
	// VerifyTLS enables certificate verification on the health check request.
	// Certificate problems are reported by the scan stage, so it is off by default.
	VerifyTLS bool
	// Client overrides the HTTP client built from the fields above.
	Client *http.Client

	once   sync.Once
	client *http.Client
}

// Status performs a GET on https://hostname+path and returns the status code.
// Redirects are not followed; a 301 is judged like any other code.
func (h *HTTPStatusLookup) Status(ctx context.Context, hostname, path string) (int, error) {
	if path == "" {
		path = consts.DefaultPath
	}
	u := fmt.Sprintf("https://%s%s", hostname, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := h.httpClient().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Discard a bounded amount so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, consts.BodySnippetLimitBytes))

	return resp.StatusCode, nil
}

func (h *HTTPStatusLookup) httpClient() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	h.once.Do(func() {
		timeout := h.Timeout
		if timeout <= 0 {
			timeout = consts.DefaultTimeout
		}
		h.client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: !h.VerifyTLS}, //nolint:gosec // verification is a config choice
				TLSHandshakeTimeout: timeout,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	})
	return h.client
}
