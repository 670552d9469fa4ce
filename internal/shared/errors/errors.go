package errors

import "errors"

// Domain errors
var (
	// Configuration errors
	ErrConfig                 = errors.New("configuration error")
	ErrInvalidRangeSpec       = errors.New("invalid range spec")
	ErrInvalidTarget          = errors.New("invalid target")
	ErrUnsupportedScanCommand = errors.New("unsupported scan command")

	// Reachability errors
	ErrDNSFailure         = errors.New("dns resolution failed")
	ErrConnectFailure     = errors.New("connection failed")
	ErrTLSFailure         = errors.New("tls handshake failed")
	ErrHTTPStatusMismatch = errors.New("http status not accepted")

	// Scan errors
	ErrScanCommandFailed = errors.New("scan command failed")
	ErrNoCertificates    = errors.New("no certificates received")

	// Notification errors
	ErrTransport = errors.New("notification transport failed")
)
