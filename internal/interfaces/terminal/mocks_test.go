package terminal

import (
	"bytes"
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
)

type mockKeyManager struct {
	mock.Mock
}

func (m *mockKeyManager) ExportPrivateKeyForBackup(
	ctx context.Context, account, prompt, newPassword string,
) (string, error) {
	args := m.Called(ctx, account, prompt, newPassword)
	return args.String(0), args.Error(1)
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

type eventSink struct {
	events chan ports.FlowEvent
}

func newEventSink() *eventSink {
	return &eventSink{make(chan ports.FlowEvent, 10)}
}

func (s *eventSink) Notify(event ports.FlowEvent) {
	s.events <- event
}

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}
