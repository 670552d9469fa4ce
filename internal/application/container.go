package application

import (
	"go.uber.org/zap"

	checkapp "github.com/fivexl/terraform-aws-ssl-checker/internal/application/check"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/checker"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/config"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/infrastructure/scanner"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/metrics"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/notify"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
)

// Container holds the collaborators of a check run.
// This is a simple dependency injection container
type Container struct {
	Config *config.Config
	Logger *zap.SugaredLogger

	// Infrastructure
	Resolver     checker.Resolver
	Connectivity checker.ConnectivityTester
	Status       checker.StatusLookup
	Scanner      scan.Scanner
	Transport    notify.Transport
	Metrics      *metrics.Recorder
}

// NewContainer wires every collaborator from cfg.
func NewContainer(cfg *config.Config, logger *zap.SugaredLogger) *Container {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Resolver:     checker.NewResolver(cfg.Nameservers, cfg.Timeout),
		Connectivity: &checker.TCPConnectivityTester{Timeout: cfg.Timeout},
		Status:       &checker.HTTPStatusLookup{Timeout: cfg.Timeout, VerifyTLS: cfg.HealthCheckVerifyTLS},
		Scanner:      scanner.New(cfg.Timeout, consts.DefaultScanWorkers, logger.Named("scanner")),
		Transport:    notify.NewWebhook(cfg.HookURL, cfg.WebhookFormat, cfg.WebhookRetries, cfg.Timeout),
		Metrics:      metrics.New(),
	}
}

// Orchestrator returns an orchestrator for one run. progress may be nil.
func (c *Container) Orchestrator(progress checkapp.ProgressFunc) *checkapp.Orchestrator {
	cfg := c.Config
	return checkapp.NewOrchestrator(checkapp.Options{
		Targets:      cfg.Targets,
		Accepted:     cfg.HealthCheckMatcher,
		NoticeDays:   cfg.ExpirationNoticeDays,
		ScanCommands: cfg.ScanCommands,
		Resolver:     c.Resolver,
		Connectivity: c.Connectivity,
		Status:       c.Status,
		Scanner:      c.Scanner,
		Transport:    c.Transport,
		Runner: &checker.Runner{
			Concurrency: cfg.Concurrency,
			RateLimit:   cfg.RateLimit,
			Timeout:     cfg.Timeout,
		},
		Logger:     c.Logger,
		Metrics:    c.Metrics,
		OnProgress: progress,
	})
}
