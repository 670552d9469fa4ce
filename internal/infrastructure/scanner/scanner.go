// Package scanner runs TLS scan commands against servers that passed the
// connectivity stage.
package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// Scanner executes (server x command) jobs on a bounded pool and collects
// the output per host:port.
type Scanner struct {
	Timeout time.Duration
	Workers int
	Logger  *zap.SugaredLogger
}

// New builds a Scanner.
func New(timeout time.Duration, workers int, logger *zap.SugaredLogger) *Scanner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scanner{Timeout: timeout, Workers: workers, Logger: logger}
}

var _ scan.Scanner = (*Scanner)(nil)

type commandFunc func(s *Scanner, ctx context.Context, server scan.ServerInfo, res *commandOutput) error

type commandOutput struct {
	summary string
	certs   *scan.CertificateInfo
}

var commands = map[string]commandFunc{
	scan.CommandCertificateInfo:   (*Scanner).certificateInfo,
	scan.CommandHTTPHeaders:       (*Scanner).httpHeaders,
	scan.CommandTLS10CipherSuites: cipherSuitesFor(tls.VersionTLS10),
	scan.CommandTLS11CipherSuites: cipherSuitesFor(tls.VersionTLS11),
	scan.CommandTLS12CipherSuites: cipherSuitesFor(tls.VersionTLS12),
	scan.CommandTLS13CipherSuites: cipherSuitesFor(tls.VersionTLS13),
}

// Scan runs every command against every server. Per-command failures are
// recorded in Result.CommandErrors. Commands skipped or cut short because
// ctx is done only set Result.Interrupted, and the returned error is set.
func (s *Scanner) Scan(ctx context.Context, servers []scan.ServerInfo, cmds []string) (map[string]scan.Result, error) {
	results := make(map[string]scan.Result, len(servers))
	for _, server := range servers {
		results[server.Address()] = scan.NewResult(server.Hostname)
	}
	if len(servers) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	record := func(server scan.ServerInfo, command string, out commandOutput, err error) {
		mu.Lock()
		defer mu.Unlock()
		key := server.Address()
		res := results[key]
		switch {
		case err != nil && ctx.Err() != nil:
			res.Interrupted = true
		case err != nil:
			res.CommandErrors[command] = err.Error()
		default:
			res.CommandResults[command] = out.summary
			if out.certs != nil {
				res.CertificateInfo = out.certs
			}
		}
		results[key] = res
	}

	workers := s.Workers
	if workers <= 0 {
		workers = consts.DefaultScanWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for _, server := range servers {
		for _, command := range cmds {
			server, command := server, command
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					record(server, command, commandOutput{}, err)
					return nil
				}
				out, err := s.runCommand(ctx, server, command)
				record(server, command, out, err)
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("scan batch interrupted: %w", err)
	}
	return results, nil
}

func (s *Scanner) runCommand(ctx context.Context, server scan.ServerInfo, command string) (out commandOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	fn, ok := commands[command]
	if !ok {
		return out, fmt.Errorf("%w: %s", errs.ErrUnsupportedScanCommand, command)
	}

	start := time.Now()
	err = fn(s, ctx, server, &out)
	s.Logger.Debugw("scan command finished",
		"host", server.Address(),
		"command", command,
		"duration", time.Since(start),
		"error", err)
	return out, err
}

func (s *Scanner) timeout() time.Duration {
	if s.Timeout <= 0 {
		return consts.DefaultTimeout
	}
	return s.Timeout
}

// handshake dials the resolved address with SNI set to the hostname and
// returns the negotiated state. Certificates are never verified here.
func (s *Scanner) handshake(ctx context.Context, server scan.ServerInfo, cfg *tls.Config) (tls.ConnectionState, error) {
	cfg = cfg.Clone()
	cfg.ServerName = server.Hostname
	cfg.InsecureSkipVerify = true //nolint:gosec // certificates are inspected, not trusted

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.timeout()},
		Config:    cfg,
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", server.DialAddress())
	if err != nil {
		return tls.ConnectionState{}, err
	}
	defer conn.Close()

	return conn.(*tls.Conn).ConnectionState(), nil
}
