package check

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/checker"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/check"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/scan"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/evaluation"
	"github.com/fivexl/terraform-aws-ssl-checker/internal/notify"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
)

// Recorder receives run metrics. *metrics.Recorder implements it.
type Recorder interface {
	ObserveHost(host string, up bool)
	ObserveExpiry(host string, days int)
	ObserveFinding(f finding.Finding)
	NotificationFailed()
	ObserveRun(finished time.Time, duration time.Duration)
}

// ProgressFunc is called after each host finishes the reachability stage.
type ProgressFunc func(done, total int, host check.HostReport)

// Options wires the orchestrator's collaborators.
type Options struct {
	Targets      []scan.HostTarget
	Accepted     checker.StatusSet
	NoticeDays   int
	ScanCommands []string

	Resolver     checker.Resolver
	Connectivity checker.ConnectivityTester
	Status       checker.StatusLookup
	Scanner      scan.Scanner
	Transport    notify.Transport
	Runner       *checker.Runner

	Logger     *zap.SugaredLogger
	Metrics    Recorder
	OnProgress ProgressFunc
	Now        func() time.Time
}

// Orchestrator coordinates one check run across every configured host
type Orchestrator struct {
	opts Options
}

// NewOrchestrator creates a new check orchestrator
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Runner == nil {
		opts.Runner = &checker.Runner{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Accepted.IsEmpty() {
		opts.Accepted = checker.MustParseStatusSet(consts.DefaultHealthCheckMatcher)
	}
	return &Orchestrator{opts: opts}
}

// hostOutcome is threaded through the per-host pipeline. A failed stage
// moves it to HostStateFailed and later stages skip it.
type hostOutcome struct {
	report check.HostReport
	server scan.ServerInfo
}

func newOutcome(target scan.HostTarget) hostOutcome {
	return hostOutcome{report: check.HostReport{Target: target, State: check.HostStatePending}}
}

func (h *hostOutcome) advance(next check.HostState) {
	if !h.report.State.CanTransition(next) {
		panic(fmt.Sprintf("invalid host transition %s -> %s", h.report.State, next))
	}
	h.report.State = next
}

func (h *hostOutcome) fail(kind finding.FailureKind, f finding.Finding) {
	h.advance(check.HostStateFailed)
	h.report.Failure = kind
	h.report.Findings = append(h.report.Findings, f)
}

func (h *hostOutcome) abort(err error) {
	if h.report.State.Terminal() {
		return
	}
	h.advance(check.HostStateFailed)
	h.report.Findings = append(h.report.Findings, finding.Generic(h.report.Target.Hostname, err))
}

// Run checks every host, notifies every finding in configuration order and
// returns the completed run. Host failures never fail the run.
func (o *Orchestrator) Run(ctx context.Context) (*check.Run, error) {
	run := check.NewRun()
	if err := run.Start(); err != nil {
		return nil, err
	}
	log := o.opts.Logger
	targets := o.opts.Targets
	log.Infof("Going to check: %d host(s)", len(targets))

	outcomes := make([]hostOutcome, len(targets))
	for i, t := range targets {
		outcomes[i] = newOutcome(t)
	}

	// Reachability stage, one worker per host
	var progressMu sync.Mutex
	done := 0
	skipped := o.opts.Runner.Run(ctx, len(targets), func(itemCtx context.Context, idx int) {
		o.reach(ctx, itemCtx, &outcomes[idx])

		if o.opts.OnProgress != nil {
			progressMu.Lock()
			done++
			o.opts.OnProgress(done, len(targets), outcomes[idx].report)
			progressMu.Unlock()
		}
	})
	for _, idx := range skipped {
		outcomes[idx].abort(fmt.Errorf("check aborted: %w", ctx.Err()))
	}

	// Scan stage, one batch for every connected host
	scanErr := o.scanAndEvaluate(ctx, outcomes)
	run.SetScanError(scanErr)

	// Notification stage, configuration order
	notifyCtx := context.WithoutCancel(ctx)
	hosts := make([]check.HostReport, len(outcomes))
	for i := range outcomes {
		hosts[i] = outcomes[i].report
		o.notifyHost(notifyCtx, run, hosts[i])
	}
	if scanErr != nil && !interrupted(scanErr) {
		err := o.opts.Transport.Send(notifyCtx, notify.FormatInternalError(scanErr))
		o.recordDelivery(run, err)
	}

	if err := run.Complete(hosts); err != nil {
		_ = run.Fail()
		return run, err
	}
	if o.opts.Metrics != nil {
		o.opts.Metrics.ObserveRun(run.CompletedAt(), run.Duration())
	}
	return run, nil
}

// reach runs Pending -> DNSChecked -> Connected for one host.
func (o *Orchestrator) reach(runCtx, ctx context.Context, h *hostOutcome) {
	log := o.opts.Logger
	host := h.report.Target.Hostname

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("host check panicked", "host", host, "panic", r, "stack", string(debug.Stack()))
			h.abort(fmt.Errorf("internal error: %v", r))
		}
	}()

	log.Debugf("DNS: %s - Testing...", host)
	addrs, err := o.opts.Resolver.Resolve(ctx, host)
	if err != nil {
		if o.aborted(runCtx, h) {
			return
		}
		log.Errorf("DNS: %s - ERROR: %v", host, err)
		h.fail(finding.FailureDNS, finding.Unreachable(host, finding.FailureDNS, "URL is not available! DNS error: "+err.Error()))
		return
	}
	h.advance(check.HostStateDNSChecked)
	log.Debugf("DNS: %s - OK", host)

	log.Debugf("Connect: %s - Testing...", h.report.Target.URL())
	server, err := o.opts.Connectivity.Test(ctx, h.report.Target, addrs)
	if err != nil {
		if o.aborted(runCtx, h) {
			return
		}
		o.connectFailed(h, checker.ClassifyError(err), err.Error())
		return
	}

	res := checker.CheckReachability(ctx, h.report.Target, o.opts.Accepted, o.opts.Status)
	h.report.StatusCode = res.StatusCode
	if !res.Reachable {
		if o.aborted(runCtx, h) {
			return
		}
		o.connectFailed(h, res.Failure, res.Detail)
		return
	}

	h.server = server
	h.advance(check.HostStateConnected)
	log.Debugf("Connect: %s - OK", h.report.Target.URL())
}

func (o *Orchestrator) connectFailed(h *hostOutcome, kind finding.FailureKind, detail string) {
	host := h.report.Target.Hostname
	o.opts.Logger.Errorf("Connect: %s - ERROR: %s", h.report.Target.URL(), detail)
	h.fail(kind, finding.Unreachable(host, kind, "URL is not available! Connect error: "+detail))
}

// aborted converts a failure caused by run cancellation into an abort.
func (o *Orchestrator) aborted(runCtx context.Context, h *hostOutcome) bool {
	if runCtx.Err() == nil {
		return false
	}
	h.abort(fmt.Errorf("check aborted: %w", runCtx.Err()))
	return true
}

// scanAndEvaluate runs Connected -> Scanned -> Evaluated for every connected
// host. It returns the batch-level scanner error, if any.
func (o *Orchestrator) scanAndEvaluate(ctx context.Context, outcomes []hostOutcome) error {
	batch := scan.NewBatch(o.opts.Targets)
	for i := range outcomes {
		if outcomes[i].report.State == check.HostStateConnected {
			batch.Accept(outcomes[i].server)
		}
	}
	if len(batch.Reachable) == 0 {
		return nil
	}
	if ctx.Err() != nil {
		for i := range outcomes {
			if outcomes[i].report.State == check.HostStateConnected {
				outcomes[i].abort(fmt.Errorf("check aborted: %w", ctx.Err()))
			}
		}
		return nil
	}

	log := o.opts.Logger
	log.Infof("Scanning %d host(s): %v", len(batch.Reachable), o.opts.ScanCommands)
	results, scanErr := o.scan(ctx, batch.Reachable)
	if scanErr != nil {
		log.Errorw("scan batch failed", "error", scanErr)
	}
	for addr, r := range results {
		batch.Results[addr] = r
	}

	now := o.opts.Now()
	for i := range outcomes {
		h := &outcomes[i]
		if h.report.State != check.HostStateConnected {
			continue
		}
		host := h.report.Target.Hostname
		result, ok := batch.Result(h.report.Target)
		if !ok {
			h.abort(fmt.Errorf("no scan result for %s", h.report.Target.Address()))
			continue
		}
		if result.Interrupted {
			h.abort(fmt.Errorf("check aborted: %w", cancelCause(ctx, scanErr)))
			continue
		}
		h.advance(check.HostStateScanned)

		log.Infof("Results for %s:", h.report.Target.BaseURL())
		if result.CertificateInfo != nil {
			if days, ok := evaluation.MinDaysLeft(result.CertificateInfo.Deployments, now); ok {
				h.report.DaysLeft, h.report.HasCertificate = days, true
			}
		}
		for _, command := range result.FailedCommands() {
			log.Errorf("%s: %s - ERROR: %s", command, host, result.CommandErrors[command])
		}

		h.report.Findings = append(h.report.Findings, evaluation.Aggregate(host, result, now, o.opts.NoticeDays)...)
		h.advance(check.HostStateEvaluated)
	}
	return scanErr
}

// interrupted reports whether a scan error only reflects run cancellation.
// Hosts cut short by it already carry an abort finding.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func cancelCause(ctx context.Context, scanErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if interrupted(scanErr) {
		return scanErr
	}
	return context.Canceled
}

// scan calls the scanner, converting a panic into a batch error.
func (o *Orchestrator) scan(ctx context.Context, servers []scan.ServerInfo) (results map[string]scan.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scanner panicked: %v", r)
		}
	}()
	return o.opts.Scanner.Scan(ctx, servers, o.opts.ScanCommands)
}

func (o *Orchestrator) notifyHost(ctx context.Context, run *check.Run, h check.HostReport) {
	log := o.opts.Logger
	host := h.Target.Hostname

	if o.opts.Metrics != nil {
		addr := h.Target.Address()
		o.opts.Metrics.ObserveHost(addr, h.Reachable())
		if h.HasCertificate {
			o.opts.Metrics.ObserveExpiry(addr, h.DaysLeft)
		}
	}

	if h.Healthy() {
		if h.HasCertificate {
			log.Infof("TLS: %s - OK: Valid for next %d days", host, h.DaysLeft)
		} else {
			log.Infof("TLS: %s - OK", host)
		}
		return
	}

	for _, f := range h.Findings {
		if f.Category() != finding.CategoryUnreachable && !f.IsGeneric() {
			log.Errorf("TLS: %s - ERROR: %s", host, f.Detail())
		}
		if o.opts.Metrics != nil {
			o.opts.Metrics.ObserveFinding(f)
		}
		err := o.opts.Transport.Send(ctx, notify.Format(f.At(h.Target.BaseURL())))
		o.recordDelivery(run, err)
	}
}

func (o *Orchestrator) recordDelivery(run *check.Run, err error) {
	run.RecordNotification(err)
	if err == nil {
		return
	}
	var terr *notify.TransportError
	if errors.As(err, &terr) && terr.StatusCode != 0 {
		o.opts.Logger.Errorw("failed to deliver notification", "status", terr.StatusCode, "error", err)
	} else {
		o.opts.Logger.Errorw("failed to deliver notification", "error", err)
	}
	if o.opts.Metrics != nil {
		o.opts.Metrics.NotificationFailed()
	}
}
