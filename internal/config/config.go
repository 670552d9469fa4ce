// Package config builds the immutable run configuration from viper, which
// layers flags, environment, config file and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/checker"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/notify"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// Keys. Each is also read from the environment in upper case.
const (
	KeyHookURL              = "hook_url"
	KeyHostnames            = "hostnames"
	KeyHealthCheckMatcher   = "health_check_matcher"
	KeyExpirationNoticeDays = "certificate_expiration_notice_days"
	KeyScanCommands         = "scan_commands"
	KeyWebhookFormat        = "webhook_format"
	KeyWebhookRetries       = "webhook_retries"
	KeyDebug                = "debug"
	KeyConcurrency          = "concurrency"
	KeyRateLimit            = "rate_limit"
	KeyTimeoutSecs          = "timeout_secs"
	KeyRunTimeoutSecs       = "run_timeout_secs"
	KeyNameservers          = "nameservers"
	KeyHealthCheckVerifyTLS = "health_check_verify_tls"
	KeyMetricsTextfile      = "metrics_textfile"
	KeyInterval             = "interval"
)

// Config is the validated configuration of a run. It is built once and
// never mutated.
type Config struct {
	HookURL              string
	Targets              []scan.HostTarget
	HealthCheckMatcher   checker.StatusSet
	ExpirationNoticeDays int
	ScanCommands         []string
	IgnoredScanCommands  []string
	WebhookFormat        string
	WebhookRetries       int
	Debug                bool
	Concurrency          int
	RateLimit            int
	Timeout              time.Duration
	RunTimeout           time.Duration
	Nameservers          []string
	HealthCheckVerifyTLS bool
	MetricsTextfile      string
	Interval             time.Duration
}

// Error reports an invalid or missing configuration value.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", strings.ToUpper(e.Key), e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Err, errs.ErrConfig}
}

// Bind registers defaults and environment lookup on v.
func Bind(v *viper.Viper) {
	v.SetDefault(KeyHealthCheckMatcher, consts.DefaultHealthCheckMatcher)
	v.SetDefault(KeyExpirationNoticeDays, consts.DefaultExpirationNoticeDays)
	v.SetDefault(KeyScanCommands, strings.Join(scan.SupportedCommands, ","))
	v.SetDefault(KeyWebhookFormat, consts.DefaultWebhookFormat)
	v.SetDefault(KeyWebhookRetries, consts.DefaultWebhookRetries)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyConcurrency, consts.DefaultConcurrency)
	v.SetDefault(KeyRateLimit, consts.DefaultRateLimit)
	v.SetDefault(KeyTimeoutSecs, int(consts.DefaultTimeout/time.Second))
	v.SetDefault(KeyRunTimeoutSecs, int(consts.DefaultRunTimeout/time.Second))
	v.SetDefault(KeyHealthCheckVerifyTLS, false)
	v.SetDefault(KeyInterval, time.Duration(0))

	v.AutomaticEnv()
}

// Load reads and validates every key. A missing required key or a malformed
// value returns *Error.
func Load(v *viper.Viper) (*Config, error) {
	hookURL := strings.TrimSpace(v.GetString(KeyHookURL))
	if hookURL == "" {
		return nil, missing(KeyHookURL)
	}

	hostnames := stringList(v, KeyHostnames)
	if len(hostnames) == 0 {
		return nil, missing(KeyHostnames)
	}
	targets, err := checker.ParseTargets(strings.Join(hostnames, ","))
	if err != nil {
		return nil, &Error{Key: KeyHostnames, Err: err}
	}

	matcher, err := checker.ParseStatusSet(v.GetString(KeyHealthCheckMatcher))
	if err != nil {
		return nil, &Error{Key: KeyHealthCheckMatcher, Err: err}
	}

	cfg := &Config{
		HookURL:              hookURL,
		Targets:              targets,
		HealthCheckMatcher:   matcher,
		ExpirationNoticeDays: v.GetInt(KeyExpirationNoticeDays),
		WebhookFormat:        strings.ToLower(strings.TrimSpace(v.GetString(KeyWebhookFormat))),
		WebhookRetries:       v.GetInt(KeyWebhookRetries),
		Debug:                v.GetBool(KeyDebug),
		Concurrency:          v.GetInt(KeyConcurrency),
		RateLimit:            v.GetInt(KeyRateLimit),
		Timeout:              time.Duration(v.GetInt(KeyTimeoutSecs)) * time.Second,
		RunTimeout:           time.Duration(v.GetInt(KeyRunTimeoutSecs)) * time.Second,
		Nameservers:          stringList(v, KeyNameservers),
		HealthCheckVerifyTLS: v.GetBool(KeyHealthCheckVerifyTLS),
		MetricsTextfile:      strings.TrimSpace(v.GetString(KeyMetricsTextfile)),
		Interval:             v.GetDuration(KeyInterval),
	}
	cfg.ScanCommands, cfg.IgnoredScanCommands = ParseScanCommands(stringList(v, KeyScanCommands))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.ExpirationNoticeDays < 0:
		return &Error{Key: KeyExpirationNoticeDays, Err: fmt.Errorf("must be >= 0, got %d", c.ExpirationNoticeDays)}
	case !notify.ValidFormat(c.WebhookFormat):
		return &Error{Key: KeyWebhookFormat, Err: fmt.Errorf("unsupported format %q (use slack or discord)", c.WebhookFormat)}
	case c.WebhookRetries < 0:
		return &Error{Key: KeyWebhookRetries, Err: fmt.Errorf("must be >= 0, got %d", c.WebhookRetries)}
	case c.Concurrency <= 0:
		return &Error{Key: KeyConcurrency, Err: fmt.Errorf("must be > 0, got %d", c.Concurrency)}
	case c.RateLimit < 0:
		return &Error{Key: KeyRateLimit, Err: fmt.Errorf("must be >= 0, got %d", c.RateLimit)}
	case c.Timeout <= 0:
		return &Error{Key: KeyTimeoutSecs, Err: fmt.Errorf("must be > 0, got %s", c.Timeout)}
	case c.RunTimeout <= 0:
		return &Error{Key: KeyRunTimeoutSecs, Err: fmt.Errorf("must be > 0, got %s", c.RunTimeout)}
	case c.Interval < 0:
		return &Error{Key: KeyInterval, Err: fmt.Errorf("must be >= 0, got %s", c.Interval)}
	}
	return nil
}

// ParseScanCommands normalises a scan command selection. certificate_info is
// always included; unsupported names are returned separately. The result
// follows scan.SupportedCommands order.
func ParseScanCommands(names []string) (commands, ignored []string) {
	selected := map[string]bool{scan.CommandCertificateInfo: true}
	seenIgnored := map[string]bool{}

	for _, name := range names {
		name = strings.ToLower(strings.ReplaceAll(name, " ", ""))
		if name == "" {
			continue
		}
		if !scan.IsSupported(name) {
			if !seenIgnored[name] {
				seenIgnored[name] = true
				ignored = append(ignored, name)
			}
			continue
		}
		selected[name] = true
	}

	for _, name := range scan.SupportedCommands {
		if selected[name] {
			commands = append(commands, name)
		}
	}
	return commands, ignored
}

func missing(key string) error {
	return &Error{
		Key: key,
		Err: fmt.Errorf("env variable %s is not defined or set to empty string", strings.ToUpper(key)),
	}
}

// stringList reads key as a list. Strings are split on commas so the same
// key works from the environment and from a YAML list.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(val, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
