package backup_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
)

// **** KeyManager ****

type mockKeyManager struct {
	mock.Mock
}

func (m *mockKeyManager) ExportPrivateKeyForBackup(
	ctx context.Context, account, prompt, newPassword string,
) (string, error) {
	args := m.Called(ctx, account, prompt, newPassword)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockKeyManager) ExportSeedPhrase(
	ctx context.Context, account, prompt string,
) ([]string, error) {
	args := m.Called(ctx, account, prompt)

	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res, args.Error(1)
}

func (m *mockKeyManager) IsUserPresenceLockPossible() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockKeyManager) IsProtectedByUserPresenceLock(account string) bool {
	args := m.Called(account)
	return args.Bool(0)
}

func (m *mockKeyManager) ElevateSecurity(ctx context.Context, account string) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// **** Child flows ****

type fakeFlow struct {
	kind    ports.FlowKind
	sink    ports.FlowEventSink
	factory *fakeFlowFactory
	// emitted on Start, if any
	autoEvent *ports.FlowEvent

	lock      sync.Mutex
	started   int
	ended     int
	dismissed int
}

func (f *fakeFlow) Kind() ports.FlowKind { return f.kind }

func (f *fakeFlow) Start() {
	f.lock.Lock()
	f.started++
	f.lock.Unlock()

	if f.autoEvent != nil {
		f.sink.Notify(*f.autoEvent)
	}
}

func (f *fakeFlow) End() {
	f.lock.Lock()
	f.ended++
	f.lock.Unlock()
	f.factory.record(fmt.Sprintf("end %s", f.kind))
}

func (f *fakeFlow) Dismiss() {
	f.lock.Lock()
	f.dismissed++
	f.lock.Unlock()
	f.factory.record(fmt.Sprintf("dismiss %s", f.kind))
}

func (f *fakeFlow) counters() (started, ended, dismissed int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.started, f.ended, f.dismissed
}

func (f *fakeFlow) notify(ev ports.FlowEvent) {
	f.sink.Notify(ev)
}

type fakeFlowFactory struct {
	lock       sync.Mutex
	flows      []*fakeFlow
	calls      []string
	autoEvents map[ports.FlowKind]ports.FlowEvent
}

func newFakeFlowFactory() *fakeFlowFactory {
	return &fakeFlowFactory{autoEvents: map[ports.FlowKind]ports.FlowEvent{}}
}

func (f *fakeFlowFactory) NewSeedPhraseFlow(
	_ string, sink ports.FlowEventSink,
) ports.ChildFlow {
	return f.newFlow(ports.FlowKindSeedPhrase, sink)
}

func (f *fakeFlowFactory) NewPasswordEntryFlow(
	_ string, sink ports.FlowEventSink,
) ports.ChildFlow {
	return f.newFlow(ports.FlowKindPasswordEntry, sink)
}

func (f *fakeFlowFactory) NewSecurityElevationFlow(
	_ domain.Wallet, sink ports.FlowEventSink,
) ports.ChildFlow {
	return f.newFlow(ports.FlowKindSecurityElevation, sink)
}

func (f *fakeFlowFactory) newFlow(
	kind ports.FlowKind, sink ports.FlowEventSink,
) *fakeFlow {
	f.lock.Lock()
	defer f.lock.Unlock()

	flow := &fakeFlow{kind: kind, sink: sink, factory: f}
	if ev, ok := f.autoEvents[kind]; ok {
		ev := ev
		flow.autoEvent = &ev
	}
	f.flows = append(f.flows, flow)
	return flow
}

func (f *fakeFlowFactory) created() []*fakeFlow {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]*fakeFlow{}, f.flows...)
}

func (f *fakeFlowFactory) record(call string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeFlowFactory) recorded() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeFlowFactory) last() *fakeFlow {
	flows := f.created()
	if len(flows) <= 0 {
		return nil
	}
	return flows[len(flows)-1]
}

// **** ArtifactSink ****

type memArtifacts struct {
	lock      sync.Mutex
	files     map[string]string
	writes    int
	writeErr  error
	removeErr error
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{files: map[string]string{}}
}

func (m *memArtifacts) Write(name, content string) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.writes++
	if m.writeErr != nil {
		return "", m.writeErr
	}
	path := fmt.Sprintf("/scratch/%s", name)
	m.files[path] = content
	return path, nil
}

func (m *memArtifacts) Remove(path string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.files, path)
	return m.removeErr
}

func (m *memArtifacts) content(path string) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	c, ok := m.files[path]
	return c, ok
}

func (m *memArtifacts) count() (files, writes int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.files), m.writes
}

// **** ShareSheet ****

type fakeShareSheet struct {
	lock  sync.Mutex
	paths []string
	done  func(bool)
	// completes the share right away, if set
	autoComplete *bool
}

func (s *fakeShareSheet) Present(path string, done func(completed bool)) {
	s.lock.Lock()
	s.paths = append(s.paths, path)
	s.done = done
	auto := s.autoComplete
	s.lock.Unlock()

	if auto != nil {
		done(*auto)
	}
}

func (s *fakeShareSheet) presented() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string{}, s.paths...)
}

func (s *fakeShareSheet) complete(completed bool) {
	s.lock.Lock()
	done := s.done
	s.lock.Unlock()
	done(completed)
}

// **** Presenter ****

type fakePresenter struct {
	lock     sync.Mutex
	errors   []error
	overlays []string
}

func (p *fakePresenter) ShowError(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.errors = append(p.errors, err)
}

func (p *fakePresenter) ShowSuccessOverlay(account string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.overlays = append(p.overlays, account)
}

func (p *fakePresenter) shownErrors() []error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]error{}, p.errors...)
}

func (p *fakePresenter) shownOverlays() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string{}, p.overlays...)
}

// **** BackupDelegate ****

type fakeDelegate struct {
	lock      sync.Mutex
	finished  []string
	cancelled int
}

func (d *fakeDelegate) OnFinished(account string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.finished = append(d.finished, account)
}

func (d *fakeDelegate) OnCancelled() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.cancelled++
}

func (d *fakeDelegate) counters() (finished, cancelled int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.finished), d.cancelled
}

// **** Repositories ****

type mockRepoManager struct {
	mock.Mock
}

func (m *mockRepoManager) AddressRecordRepository() domain.AddressRecordRepository {
	args := m.Called()
	return args.Get(0).(domain.AddressRecordRepository)
}

func (m *mockRepoManager) BackupRepository() domain.BackupRepository {
	args := m.Called()
	return args.Get(0).(domain.BackupRepository)
}

func (m *mockRepoManager) SeedRepository() domain.SeedRepository {
	args := m.Called()
	return args.Get(0).(domain.SeedRepository)
}

func (m *mockRepoManager) Close() {}

type mockAddressRecordRepository struct {
	mock.Mock
}

func (m *mockAddressRecordRepository) GetAddressRecord(
	ctx context.Context,
) (*domain.AddressRecord, error) {
	args := m.Called(ctx)

	var res *domain.AddressRecord
	if a := args.Get(0); a != nil {
		res = a.(*domain.AddressRecord)
	}
	return res, args.Error(1)
}

func (m *mockAddressRecordRepository) UpdateAddressRecord(
	ctx context.Context,
	updateFn func(r *domain.AddressRecord) (*domain.AddressRecord, error),
) error {
	args := m.Called(ctx, updateFn)
	return args.Error(0)
}

type mockBackupRepository struct {
	mock.Mock
}

func (m *mockBackupRepository) AddBackup(
	ctx context.Context, record domain.BackupRecord,
) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockBackupRepository) ListBackups(
	ctx context.Context,
) ([]domain.BackupRecord, error) {
	args := m.Called(ctx)

	var res []domain.BackupRecord
	if a := args.Get(0); a != nil {
		res = a.([]domain.BackupRecord)
	}
	return res, args.Error(1)
}

func (m *mockBackupRepository) ListBackupsForAddress(
	ctx context.Context, address string,
) ([]domain.BackupRecord, error) {
	args := m.Called(ctx, address)

	var res []domain.BackupRecord
	if a := args.Get(0); a != nil {
		res = a.([]domain.BackupRecord)
	}
	return res, args.Error(1)
}

func (m *mockBackupRepository) LastBackup(
	ctx context.Context, address string,
) (*domain.BackupRecord, error) {
	args := m.Called(ctx, address)

	var res *domain.BackupRecord
	if a := args.Get(0); a != nil {
		res = a.(*domain.BackupRecord)
	}
	return res, args.Error(1)
}
