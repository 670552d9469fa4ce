package cmd

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/config"
)

// checkFlags maps flag names to configuration keys. A flag only overrides
// the environment and config file when it is set on the command line.
var checkFlags = map[string]string{
	"hook-url":             config.KeyHookURL,
	"hostnames":            config.KeyHostnames,
	"health-check-matcher": config.KeyHealthCheckMatcher,
	"notice-days":          config.KeyExpirationNoticeDays,
	"scan-commands":        config.KeyScanCommands,
	"webhook-format":       config.KeyWebhookFormat,
	"webhook-retries":      config.KeyWebhookRetries,
	"concurrency":          config.KeyConcurrency,
	"rate-limit":           config.KeyRateLimit,
	"timeout":              config.KeyTimeoutSecs,
	"run-timeout":          config.KeyRunTimeoutSecs,
	"nameservers":          config.KeyNameservers,
	"verify-tls":           config.KeyHealthCheckVerifyTLS,
	"metrics-textfile":     config.KeyMetricsTextfile,
	"interval":             config.KeyInterval,
}

func registerCheckFlags(flags *pflag.FlagSet) {
	flags.String("hook-url", "", "webhook URL (or set HOOK_URL)")
	flags.String("hostnames", "", "comma-separated hosts, e.g. example.com,api.example.com:8443/health (or set HOSTNAMES)")
	flags.String("health-check-matcher", "", "accepted HTTP status codes, e.g. 200-399,201")
	flags.Int("notice-days", 0, "alert when a certificate expires within this many days")
	flags.String("scan-commands", "", "comma-separated scan commands (certificate_info is always run)")
	flags.String("webhook-format", "", "webhook payload format: slack or discord")
	flags.Int("webhook-retries", 0, "retries for failed webhook deliveries")
	flags.Int("concurrency", 0, "number of hosts checked in parallel")
	flags.Int("rate-limit", 0, "maximum host checks started per second (0 = unlimited)")
	flags.Int("timeout", 0, "per-host network timeout in seconds")
	flags.Int("run-timeout", 0, "timeout for a whole run in seconds")
	flags.String("nameservers", "", "comma-separated DNS servers (ip[:port]) used instead of the system resolver")
	flags.Bool("verify-tls", false, "verify certificates during the health check request")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file after each run")
	flags.Duration("interval", 0, "repeat the run at this interval (0 = run once)")
}

func bindCheckFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range checkFlags {
		bindFlagTo(v, flags, key, name)
	}
}

// bindFlag binds a flag to a key on the global viper instance.
func bindFlag(flags *pflag.FlagSet, key, name string) {
	bindFlagTo(viper.GetViper(), flags, key, name)
}

func bindFlagTo(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil {
		return
	}
	_ = v.BindPFlag(key, flag)
}

// changedFlags lists the flags set on the command line, for debug logging.
func changedFlags(flags *pflag.FlagSet) map[string]string {
	out := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		if f.Name == "hook-url" {
			out[f.Name] = "<redacted>"
			return
		}
		out[f.Name] = f.Value.String()
	})
	return out
}
