package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// HTTPSPort is dialed when a host entry carries no explicit port.
	HTTPSPort = 443
	// DefaultPath is used when a host entry carries no path.
	DefaultPath = "/"
)

const (
	// DefaultHealthCheckMatcher lists the status codes treated as reachable.
	DefaultHealthCheckMatcher = "200-399,201"
	// DefaultExpirationNoticeDays is the inclusive expiry notice threshold.
	DefaultExpirationNoticeDays = 7
	// DefaultWebhookFormat selects the Slack attachment payload.
	DefaultWebhookFormat = "slack"
	// DefaultWebhookRetries caps transport retries for a single message.
	DefaultWebhookRetries = 2
)

const (
	// DefaultConcurrency bounds the per-host reachability workers.
	DefaultConcurrency = 5
	// DefaultRateLimit caps host checks started per second.
	DefaultRateLimit = 10
	// DefaultTimeout bounds every single network operation.
	DefaultTimeout = 10 * time.Second
	// DefaultRunTimeout bounds a whole run.
	DefaultRunTimeout = 300 * time.Second
	// DefaultScanWorkers bounds concurrent (server, command) scan jobs.
	DefaultScanWorkers = 10
	// BodySnippetLimitBytes caps how much of a health check body is drained.
	BodySnippetLimitBytes = 2048
)
