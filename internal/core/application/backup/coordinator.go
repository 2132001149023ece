package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
	"github.com/tdex-network/tdex-backup/pkg/stats"
)

const (
	DefaultSuccessOverlayDelay = 400 * time.Millisecond
	DefaultExportPrompt        = "Enter your password to export the private key"

	artifactExt = ".json"
)

var (
	// ErrShareNotCompleted is shown when the user dismisses the share sheet
	// and the backup requires the keystore to be actually shared.
	ErrShareNotCompleted = errors.New("keystore has not been shared, retry")
)

// CoordinatorOpts holds the collaborators and settings of a Coordinator.
type CoordinatorOpts struct {
	Wallet     domain.Wallet
	KeyManager ports.KeyManager
	Flows      ports.FlowFactory
	Artifacts  ports.ArtifactSink
	ShareSheet ports.ShareSheet
	Presenter  ports.Presenter
	Delegate   ports.BackupDelegate

	ExportPrompt           string
	RequireShareCompletion bool
	SuccessOverlayDelay    time.Duration
}

func (o CoordinatorOpts) validate() error {
	if err := domain.ValidateAddress(o.Wallet.Address); err != nil {
		return err
	}
	if o.KeyManager == nil {
		return fmt.Errorf("missing key manager")
	}
	if o.Flows == nil {
		return fmt.Errorf("missing flow factory")
	}
	if o.Artifacts == nil {
		return fmt.Errorf("missing artifact sink")
	}
	if o.ShareSheet == nil {
		return fmt.Errorf("missing share sheet")
	}
	if o.Presenter == nil {
		return fmt.Errorf("missing presenter")
	}
	if o.Delegate == nil {
		return fmt.Errorf("missing backup delegate")
	}
	if o.SuccessOverlayDelay < 0 {
		return fmt.Errorf("success overlay delay must not be negative")
	}
	return nil
}

// Coordinator drives a single backup flow of a wallet through its child
// flows. All state is owned by one loop goroutine: child flow outcomes,
// export results and share completions are queued as events and handled
// one at a time. The delegate is notified exactly once.
type Coordinator struct {
	opts   CoordinatorOpts
	backup *domain.Backup
	queue  *eventQueue
	done   chan struct{}
	log    *log.Entry

	lock         sync.RWMutex
	primary      ports.ChildFlow
	elevation    ports.ChildFlow
	artifactPath string
	outcome      domain.BackupOutcome
	// calls to collaborators, run in order once the lock is released.
	callbacks []func()
}

// NewCoordinator returns a NotStarted coordinator for the wallet.
func NewCoordinator(opts CoordinatorOpts) (*Coordinator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.ExportPrompt == "" {
		opts.ExportPrompt = DefaultExportPrompt
	}

	backup, err := domain.NewBackup(opts.Wallet)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		opts:   opts,
		backup: backup,
		queue:  newEventQueue(),
		done:   make(chan struct{}),
		log: log.WithFields(log.Fields{
			"backup":  backup.Id,
			"address": opts.Wallet.Address,
		}),
	}, nil
}

// Start begins the flow by launching the seed phrase flow for HD wallets or
// the password entry flow otherwise. It returns immediately, the outcome is
// reported to the delegate and can be awaited with Wait. Cancelling ctx
// aborts the flow if not finished yet.
func (c *Coordinator) Start(ctx context.Context) error {
	c.lock.Lock()
	if err := c.backup.Start(); err != nil {
		c.lock.Unlock()
		return err
	}
	c.lock.Unlock()

	c.log.Debugf("starting %s backup", c.backup.Method)
	go c.loop(ctx)
	c.queue.push(event{kind: eventStart})
	return nil
}

// Notify queues the outcome of a child flow. Events received once the flow
// is finished are ignored.
func (c *Coordinator) Notify(ev ports.FlowEvent) {
	c.post(event{kind: eventFlow, flow: ev})
}

// Wait blocks until the flow is finished or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) (domain.BackupOutcome, error) {
	select {
	case <-c.done:
		return c.outcome, nil
	case <-ctx.Done():
		return domain.BackupOutcome{}, ctx.Err()
	}
}

// Done returns a channel closed once the flow is finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Status returns the current status of the flow.
func (c *Coordinator) Status() domain.BackupStatus {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.backup.Status
}

// Backup returns a copy of the backup entity driven by the coordinator.
func (c *Coordinator) Backup() domain.Backup {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return *c.backup
}

// ActiveFlows returns the kinds of the child flows not yet released, primary
// first.
func (c *Coordinator) ActiveFlows() []ports.FlowKind {
	c.lock.RLock()
	defer c.lock.RUnlock()

	kinds := make([]ports.FlowKind, 0, 2)
	if c.primary != nil {
		kinds = append(kinds, c.primary.Kind())
	}
	if c.elevation != nil {
		kinds = append(kinds, c.elevation.Kind())
	}
	return kinds
}

// ArtifactPath returns the path of the exported keystore while the share
// sheet is presented.
func (c *Coordinator) ArtifactPath() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.artifactPath
}

func (c *Coordinator) post(ev event) {
	select {
	case <-c.done:
		c.log.Debugf("flow finished, ignoring %s event", ev.kind)
		return
	default:
	}
	c.queue.push(ev)
}

func (c *Coordinator) loop(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			c.abort(ctx.Err())
			return
		case <-c.queue.signal:
			for {
				ev, ok := c.queue.pop()
				if !ok {
					break
				}
				c.handle(ctx, ev)
			}
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, ev event) {
	c.lock.Lock()
	if c.backup.IsFinished() {
		c.lock.Unlock()
		c.log.Debugf("flow finished, ignoring %s event", ev.kind)
		return
	}

	switch ev.kind {
	case eventStart:
		c.startPrimaryFlow()
	case eventFlow:
		c.handleFlowEvent(ctx, ev.flow)
	case eventExportResult:
		c.handleExportResult(ev.secret, ev.err)
	case eventShareDone:
		c.handleShareDone(ev.completed)
	}
	c.runCallbacks()
}

// runCallbacks releases the lock and then runs the queued callbacks.
func (c *Coordinator) runCallbacks() {
	callbacks := c.callbacks
	c.callbacks = nil
	c.lock.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (c *Coordinator) later(fn func()) {
	c.callbacks = append(c.callbacks, fn)
}

func (c *Coordinator) startPrimaryFlow() {
	if c.opts.Wallet.IsHD() {
		c.primary = c.opts.Flows.NewSeedPhraseFlow(c.opts.Wallet.Address, c)
	} else {
		c.primary = c.opts.Flows.NewPasswordEntryFlow(c.opts.Wallet.Address, c)
	}
	c.log.Debugf("launching %s flow", c.primary.Kind())
	c.later(c.primary.Start)
}

func (c *Coordinator) handleFlowEvent(ctx context.Context, ev ports.FlowEvent) {
	if !c.isExpected(ev) {
		c.log.WithError(domain.ErrUnexpectedFlowEvent).Warnf(
			"dropping %s event in status %s", ev.Kind, c.backup.Status,
		)
		return
	}
	if ev.IsCancel() {
		c.cancel()
		return
	}

	switch ev.Kind {
	case ports.PasswordEntered:
		c.export(ctx, ev.Password)
	case ports.SeedPhraseVerified:
		c.decideElevation()
	case ports.SecurityLocked, ports.SecurityDeclined:
		if err := c.backup.DecideSecurity(ev.Kind == ports.SecurityLocked); err != nil {
			c.log.WithError(err).Warn("unexpected security decision")
			return
		}
		c.complete()
	}
}

// isExpected returns whether the event comes from the flow currently
// awaited.
func (c *Coordinator) isExpected(ev ports.FlowEvent) bool {
	switch c.backup.Status {
	case domain.BackupStatusAwaitingPrimaryFlow, domain.BackupStatusAwaitingExport:
		return c.primary != nil && c.primary.Kind() == ev.Source()
	case domain.BackupStatusAwaitingSecurityDecision:
		return c.elevation != nil && ev.Source() == ports.FlowKindSecurityElevation
	default:
		return false
	}
}

func (c *Coordinator) export(ctx context.Context, password string) {
	if err := c.backup.BeginExport(); err != nil {
		c.log.WithError(err).Warn("export refused")
		c.showError(err)
		return
	}

	c.log.Debug("exporting private key")
	address, prompt := c.opts.Wallet.Address, c.opts.ExportPrompt
	go func() {
		secret, err := c.opts.KeyManager.ExportPrivateKeyForBackup(
			ctx, address, prompt, password,
		)
		c.post(event{kind: eventExportResult, secret: secret, err: err})
	}()
}

func (c *Coordinator) handleExportResult(secret string, err error) {
	if err != nil {
		c.backup.EndExport()
		stats.ExportFailures.Inc()
		c.log.WithError(err).Warn("failed to export private key")
		c.showError(fmt.Errorf("%w: %w", domain.ErrExportFailed, err))
		return
	}

	path, err := c.opts.Artifacts.Write(uuid.New().String()+artifactExt, secret)
	if err != nil {
		c.backup.EndExport()
		c.log.WithError(err).Warn("failed to write keystore file")
		c.showError(fmt.Errorf("%w: %w", domain.ErrTemporaryFileWriteFailed, err))
		return
	}

	c.artifactPath = path
	c.log.Debug("presenting share sheet")
	c.later(func() {
		c.opts.ShareSheet.Present(path, func(completed bool) {
			c.post(event{kind: eventShareDone, completed: completed})
		})
	})
}

func (c *Coordinator) handleShareDone(completed bool) {
	c.removeArtifact()
	if err := c.backup.EndExport(); err != nil {
		c.log.WithError(err).Warn("unexpected share completion")
		return
	}
	c.backup.MarkShared(completed)

	if completed {
		c.decideElevation()
		return
	}

	if c.opts.RequireShareCompletion {
		c.log.Debug("share dismissed, waiting for a new attempt")
		c.showError(ErrShareNotCompleted)
		return
	}

	c.log.Debug("share dismissed, completing backup without elevation")
	c.complete()
}

// decideElevation offers the presence lock only if the device supports it
// and the account is not protected yet.
func (c *Coordinator) decideElevation() {
	address := c.opts.Wallet.Address
	eligible := c.opts.KeyManager.IsUserPresenceLockPossible() &&
		!c.opts.KeyManager.IsProtectedByUserPresenceLock(address)
	if !eligible {
		c.log.Debug("security elevation not eligible")
		c.complete()
		return
	}

	if err := c.backup.AwaitSecurityDecision(); err != nil {
		c.log.WithError(err).Warn("cannot await security decision")
		return
	}

	stats.ElevationsOffered.Inc()
	c.elevation = c.opts.Flows.NewSecurityElevationFlow(c.opts.Wallet, c)
	c.log.Debugf("launching %s flow", c.elevation.Kind())
	c.later(c.elevation.Start)
}

// complete releases the primary flow, then the elevation one, and reports the
// success.
func (c *Coordinator) complete() {
	address := c.opts.Wallet.Address
	c.release()
	c.later(func() { c.opts.Delegate.OnFinished(address) })
	c.finish(domain.Succeeded())
	c.later(func() {
		time.AfterFunc(c.opts.SuccessOverlayDelay, func() {
			c.opts.Presenter.ShowSuccessOverlay(address)
		})
	})
}

func (c *Coordinator) cancel() {
	if err := c.backup.Cancel(); err != nil {
		c.log.WithError(err).Warn("cancel refused")
		c.showError(err)
		return
	}
	c.dismiss()
	c.removeArtifact()
	c.later(c.opts.Delegate.OnCancelled)
	c.report()
}

func (c *Coordinator) abort(reason error) {
	c.lock.Lock()
	if c.backup.IsFinished() {
		c.lock.Unlock()
		return
	}

	c.log.WithError(reason).Debug("aborting backup")
	c.dismiss()
	c.removeArtifact()
	c.later(c.opts.Delegate.OnCancelled)
	c.finish(domain.Failure(fmt.Errorf("%w: %w", domain.ErrUserCancelled, reason)))
	c.runCallbacks()
}

func (c *Coordinator) release() {
	if c.primary != nil {
		c.later(c.primary.End)
		c.primary = nil
	}
	if c.elevation != nil {
		c.later(c.elevation.End)
		c.elevation = nil
	}
}

func (c *Coordinator) dismiss() {
	if c.elevation != nil {
		c.later(c.elevation.Dismiss)
		c.elevation = nil
	}
	if c.primary != nil {
		c.later(c.primary.Dismiss)
		c.primary = nil
	}
}

func (c *Coordinator) removeArtifact() {
	if c.artifactPath == "" {
		return
	}
	if err := c.opts.Artifacts.Remove(c.artifactPath); err != nil {
		c.log.WithError(err).Warn("failed to remove keystore file")
	}
	c.artifactPath = ""
}

func (c *Coordinator) finish(outcome domain.BackupOutcome) {
	if err := c.backup.Finish(outcome); err != nil {
		c.log.WithError(err).Warn("backup already finished")
		return
	}
	c.report()
}

func (c *Coordinator) showError(err error) {
	c.later(func() { c.opts.Presenter.ShowError(err) })
}

// report publishes the outcome of an already Finished backup once the queued
// callbacks have run.
func (c *Coordinator) report() {
	c.outcome = *c.backup.Outcome
	c.later(func() { close(c.done) })
	c.log.Infof(
		"backup finished in %ds, success: %t",
		c.backup.EndTime-c.backup.StartTime, c.outcome.Success,
	)
}
