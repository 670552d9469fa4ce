package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/application"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/config"
	domaincheck "github.com/fivexl/terraform-aws-ssl-checker/internal/domain/check"
)

var showProgress bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every configured host and send a webhook message per finding",
	Long: `Check resolves each host, tests TCP connectivity and the HTTPS health check,
scans the certificates of reachable hosts and posts every finding to the
configured webhook. Findings do not change the exit code; only configuration
errors do.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		logger.Debugw("configuration loaded", "flags", changedFlags(cmd.Flags()), "hosts", len(cfg.Targets))
		if len(cfg.IgnoredScanCommands) > 0 {
			logger.Warnf("Ignoring unsupported scan commands: %v", cfg.IgnoredScanCommands)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Setup signal handling
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		go func() {
			select {
			case sig := <-sigCh:
				fmt.Printf("\n%s Received %s, sending findings collected so far...\n", colorWarn("!"), sig.String())
				cancel()
			case <-ctx.Done():
			}
		}()

		container := application.NewContainer(cfg, logger)
		return runChecks(ctx, container, showProgress)
	},
}

func init() {
	registerCheckFlags(checkCmd.Flags())
	bindCheckFlags(viper.GetViper(), checkCmd.Flags())
	checkCmd.Flags().BoolVar(&showProgress, "progress", false, "show a live progress line")
}

// runChecks performs one run, or one run per interval until ctx is done.
func runChecks(ctx context.Context, c *application.Container, progress bool) error {
	interval := c.Config.Interval
	for {
		runOnce(ctx, c, progress)
		if interval <= 0 {
			return nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func runOnce(ctx context.Context, c *application.Container, progress bool) *domaincheck.Run {
	cfg := c.Config
	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	fmt.Printf("%s Checking %d host(s)\n", colorInfo("→"), len(cfg.Targets))

	var printer *progressPrinter
	var onProgress func(done, total int, host domaincheck.HostReport)
	if progress {
		printer = newProgressPrinter(len(cfg.Targets), "sslcheck")
		printer.Start()
		onProgress = func(done, total int, host domaincheck.HostReport) {
			printer.Increment(host.State != domaincheck.HostStateFailed)
		}
	}

	run, err := c.Orchestrator(onProgress).Run(runCtx)

	if printer != nil {
		printer.Stop()
	}
	if err != nil {
		logger.Errorw("check run failed", "error", err)
	}
	if run == nil {
		return nil
	}

	logger.Infow("check run finished", "run_id", run.ID(), "findings", len(run.Findings()))
	printSummary(run)
	if err := recordTelemetry(c, cfg.MetricsTextfile); err != nil {
		logger.Errorw("failed to write metrics", "path", cfg.MetricsTextfile, "error", err)
	}
	return run
}
