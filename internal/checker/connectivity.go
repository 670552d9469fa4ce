package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
)

// ConnectivityTester confirms a resolved host accepts connections on its port.
type ConnectivityTester interface {
	Test(ctx context.Context, target scan.HostTarget, addrs []string) (scan.ServerInfo, error)
}

// TCPConnectivityTester dials each resolved address in turn and keeps the
// first one that accepts a TCP connection.
type TCPConnectivityTester struct {
	Timeout time.Duration
}

// Test returns the ServerInfo for the first reachable address.
func (c *TCPConnectivityTester) Test(ctx context.Context, target scan.HostTarget, addrs []string) (scan.ServerInfo, error) {
	if len(addrs) == 0 {
		return scan.ServerInfo{}, &LookupError{
			Kind: finding.FailureDNS,
			Host: target.Hostname,
			Err:  fmt.Errorf("no addresses to connect to for %s", target.Hostname),
		}
	}

	dialer := &net.Dialer{Timeout: timeoutOrDefault(c.Timeout)}

	var errList []error
	for _, ip := range addrs {
		addr := net.JoinHostPort(ip, strconv.Itoa(target.Port))
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			errList = append(errList, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		_ = conn.Close()

		return scan.ServerInfo{
			Hostname: target.Hostname,
			Port:     target.Port,
			IP:       ip,
			Path:     target.Path,
		}, nil
	}

	return scan.ServerInfo{}, &LookupError{
		Kind: finding.FailureConnect,
		Host: target.Hostname,
		Err:  errors.Join(errList...),
	}
}
