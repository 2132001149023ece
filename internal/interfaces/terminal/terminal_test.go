package terminal

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
)

const (
	address = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	timeout = 2 * time.Second
)

var (
	ctx      = context.Background()
	mnemonic = strings.Fields(
		"abandon abandon abandon abandon abandon abandon " +
			"abandon abandon abandon abandon abandon about",
	)
)

func TestPasswordFlow(t *testing.T) {
	t.Run("entered_and_resumed", func(t *testing.T) {
		input := "abc\npassword1\npassword1\npassword2\npassword2\n"
		factory, out := newFactory(t, input, &mockKeyManager{})
		sink := newEventSink()

		flow := factory.NewPasswordEntryFlow(address, sink)
		require.Equal(t, ports.FlowKindPasswordEntry, flow.Kind())
		flow.Start()

		event := waitEvent(t, sink)
		require.Equal(t, ports.PasswordEntered, event.Kind)
		require.Equal(t, "password1", event.Password)
		require.Contains(t, out.String(), "at least 6 characters")

		factory.term.ShowError(errors.New("export failed"))

		event = waitEvent(t, sink)
		require.Equal(t, ports.PasswordEntered, event.Kind)
		require.Equal(t, "password2", event.Password)
		require.Contains(t, out.String(), "Error: export failed")

		flow.End()
	})

	t.Run("cancelled", func(t *testing.T) {
		factory, out := newFactory(t, "password1\npassword2\n\n", &mockKeyManager{})
		sink := newEventSink()

		factory.NewPasswordEntryFlow(address, sink).Start()

		event := waitEvent(t, sink)
		require.Equal(t, ports.PasswordCancelled, event.Kind)
		require.Empty(t, event.Password)
		require.Contains(t, out.String(), "Passwords do not match")
	})

	t.Run("dismissed", func(t *testing.T) {
		r, w := io.Pipe()
		defer w.Close()
		factory, _ := newFactoryWithReader(t, r, &mockKeyManager{})
		sink := newEventSink()

		flow := factory.NewPasswordEntryFlow(address, sink)
		flow.Start()
		flow.Dismiss()

		go w.Write([]byte("password1\npassword1\n"))

		require.Never(t, func() bool {
			return len(sink.events) > 0
		}, 200*time.Millisecond, 20*time.Millisecond)
	})
}

func TestSeedPhraseFlow(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		km := &mockKeyManager{}
		km.On("ExportSeedPhrase", mock.Anything, address, revealSeedPrompt).
			Return(mnemonic, nil)

		factory, out := newFactory(t, "\nwrong\nabandon\nABOUT\n", km)
		factory.positions = func(total, count int) []int {
			require.Equal(t, len(mnemonic), total)
			require.Equal(t, DefaultSeedVerifyWords, count)
			return []int{0, 11}
		}
		sink := newEventSink()

		flow := factory.NewSeedPhraseFlow(address, sink)
		require.Equal(t, ports.FlowKindSeedPhrase, flow.Kind())
		flow.Start()

		event := waitEvent(t, sink)
		require.Equal(t, ports.SeedPhraseVerified, event.Kind)
		require.Contains(t, out.String(), "12. about")
		require.Contains(t, out.String(), "Wrong word, try again")
		km.AssertExpectations(t)
	})

	t.Run("cancelled", func(t *testing.T) {
		km := &mockKeyManager{}
		km.On("ExportSeedPhrase", mock.Anything, address, revealSeedPrompt).
			Return(mnemonic, nil)

		factory, _ := newFactory(t, "\n\n", km)
		sink := newEventSink()

		factory.NewSeedPhraseFlow(address, sink).Start()

		event := waitEvent(t, sink)
		require.Equal(t, ports.SeedPhraseCancelled, event.Kind)
	})

	t.Run("wrong_password_retried", func(t *testing.T) {
		km := &mockKeyManager{}
		km.On("ExportSeedPhrase", mock.Anything, address, revealSeedPrompt).
			Return(nil, domain.ErrInvalidPassword).Once()
		km.On("ExportSeedPhrase", mock.Anything, address, revealSeedPrompt).
			Return(mnemonic, nil).Once()

		factory, out := newFactory(t, "\nabandon\nabout\n", km)
		factory.positions = func(total, count int) []int {
			return []int{0, 11}
		}
		sink := newEventSink()

		factory.NewSeedPhraseFlow(address, sink).Start()

		event := waitEvent(t, sink)
		require.Equal(t, ports.SeedPhraseVerified, event.Kind)
		require.Contains(t, out.String(), "Wrong password, try again")
		km.AssertNumberOfCalls(t, "ExportSeedPhrase", 2)
	})

	t.Run("reveal_aborted", func(t *testing.T) {
		tests := map[string]error{
			"blank_password": ErrNoInput,
			"end_of_input":   io.EOF,
			"context_done":   context.Canceled,
			"other_failure":  errors.New("stored seed does not match account address"),
		}
		for name, revealErr := range tests {
			t.Run(name, func(t *testing.T) {
				km := &mockKeyManager{}
				km.On("ExportSeedPhrase", mock.Anything, address, revealSeedPrompt).
					Return(nil, revealErr)

				factory, _ := newFactory(t, "", km)
				sink := newEventSink()

				factory.NewSeedPhraseFlow(address, sink).Start()

				event := waitEvent(t, sink)
				require.Equal(t, ports.SeedPhraseCancelled, event.Kind)
				km.AssertNumberOfCalls(t, "ExportSeedPhrase", 1)
			})
		}
	})
}

func TestSecurityElevationFlow(t *testing.T) {
	wallet := domain.Wallet{Address: address, Origin: domain.WalletOriginPrivateKey}

	tests := []struct {
		name       string
		input      string
		elevateErr error
		elevate    bool
		expected   ports.FlowEventKind
	}{
		{"locked", "y\n", nil, true, ports.SecurityLocked},
		{"declined", "maybe\nn\n", nil, false, ports.SecurityDeclined},
		{"no_input", "", nil, false, ports.SecurityDeclined},
		{"elevation_failure", "yes\n", errors.New("boom"), true, ports.SecurityDeclined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km := &mockKeyManager{}
			km.On("ElevateSecurity", mock.Anything, address).Return(tt.elevateErr)

			factory, _ := newFactory(t, tt.input, km)
			sink := newEventSink()

			flow := factory.NewSecurityElevationFlow(wallet, sink)
			require.Equal(t, ports.FlowKindSecurityElevation, flow.Kind())
			flow.Start()

			event := waitEvent(t, sink)
			require.Equal(t, tt.expected, event.Kind)
			if tt.elevate {
				km.AssertCalled(t, "ElevateSecurity", mock.Anything, address)
			} else {
				km.AssertNotCalled(t, "ElevateSecurity", mock.Anything, address)
			}
		})
	}
}

func TestPresent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"version":3}`), 0600))

	t.Run("completed", func(t *testing.T) {
		dest := t.TempDir()
		term, out := newTerminal("/not/existing\n" + dest + "\n")

		require.True(t, present(t, term, src))
		content, err := os.ReadFile(filepath.Join(dest, "backup.json"))
		require.NoError(t, err)
		require.Equal(t, `{"version":3}`, string(content))
		require.Contains(t, out.String(), "Failed to save backup file")
	})

	t.Run("dismissed", func(t *testing.T) {
		term, _ := newTerminal("\n")
		require.False(t, present(t, term, src))
	})
}

func TestAuthenticate(t *testing.T) {
	term, out := newTerminal("secret\n\n")

	password, err := term.Authenticate(ctx, "Enter password")
	require.NoError(t, err)
	require.Equal(t, "secret", password)
	require.Contains(t, out.String(), "Enter password: ")

	_, err = term.Authenticate(ctx, "Enter password")
	require.ErrorIs(t, err, ErrNoInput)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = term.Authenticate(cancelled, "Enter password")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPrintln(t *testing.T) {
	term, out := newTerminal("")
	term.Println("Starting backup of", address)
	require.Equal(t, "Starting backup of "+address+"\n", out.String())
}

func TestFailingNewFlowFactory(t *testing.T) {
	term, _ := newTerminal("")

	tests := []FlowFactoryOpts{
		{KeyManager: &mockKeyManager{}},
		{Terminal: term},
		{Terminal: term, KeyManager: &mockKeyManager{}, SeedVerifyWords: -1},
		{Terminal: term, KeyManager: &mockKeyManager{}, MinPasswordLength: -1},
	}
	for _, opts := range tests {
		factory, err := NewFlowFactory(ctx, opts)
		require.Error(t, err)
		require.Nil(t, factory)
	}
}

func TestRandomPositions(t *testing.T) {
	positions := randomPositions(12, 3)
	require.Len(t, positions, 3)
	for i, p := range positions {
		require.True(t, p >= 0 && p < 12)
		if i > 0 {
			require.Greater(t, p, positions[i-1])
		}
	}

	require.Len(t, randomPositions(2, 3), 2)
}

func present(t *testing.T, term *Terminal, path string) bool {
	result := make(chan bool, 1)
	term.Present(path, func(completed bool) {
		result <- completed
	})
	select {
	case completed := <-result:
		return completed
	case <-time.After(timeout):
		t.Fatal("share sheet did not complete")
		return false
	}
}

func waitEvent(t *testing.T, sink *eventSink) ports.FlowEvent {
	select {
	case event := <-sink.events:
		return event
	case <-time.After(timeout):
		t.Fatal("flow did not report any event")
		return ports.FlowEvent{}
	}
}

func newTerminal(input string) (*Terminal, *syncBuffer) {
	out := &syncBuffer{}
	return New(strings.NewReader(input), out), out
}

func newFactory(
	t *testing.T, input string, km ports.KeyManager,
) (*FlowFactory, *syncBuffer) {
	return newFactoryWithReader(t, strings.NewReader(input), km)
}

func newFactoryWithReader(
	t *testing.T, in io.Reader, km ports.KeyManager,
) (*FlowFactory, *syncBuffer) {
	out := &syncBuffer{}
	factory, err := NewFlowFactory(ctx, FlowFactoryOpts{
		Terminal:   New(in, out),
		KeyManager: km,
	})
	require.NoError(t, err)
	return factory, out
}
